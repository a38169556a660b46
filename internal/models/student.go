package models

import (
	"strings"
	"time"
)

// StudentSearchFilter holds the optional search fields. Populated fields combine with AND.
type StudentSearchFilter struct {
	UniversalID    string `form:"universal_id" json:"universal_id" validate:"max=100"`
	Username       string `form:"username" json:"username" validate:"max=100"`
	FirstName      string `form:"firstname" json:"firstname" validate:"max=100"`
	LastName       string `form:"lastname" json:"lastname" validate:"max=100"`
	Major          string `form:"major" json:"major" validate:"max=100"`
	Classification string `form:"classification" json:"classification" validate:"omitempty,oneof=FR SO JR SR GR"`
	Sport          string `form:"sport" json:"sport" validate:"max=100"`
}

// Normalize trims every field and upper-cases the classification code.
func (f StudentSearchFilter) Normalize() StudentSearchFilter {
	return StudentSearchFilter{
		UniversalID:    strings.TrimSpace(f.UniversalID),
		Username:       strings.TrimSpace(f.Username),
		FirstName:      strings.TrimSpace(f.FirstName),
		LastName:       strings.TrimSpace(f.LastName),
		Major:          strings.TrimSpace(f.Major),
		Classification: strings.ToUpper(strings.TrimSpace(f.Classification)),
		Sport:          strings.TrimSpace(f.Sport),
	}
}

// IsEmpty reports whether no filter field is populated.
func (f StudentSearchFilter) IsEmpty() bool {
	return f == StudentSearchFilter{}
}

// StudentSearchCriteria is what the repository needs to run one search.
type StudentSearchCriteria struct {
	Filter StudentSearchFilter
	Policy AccessPolicy
	Now    time.Time
	Limit  int
}

// StudentAthlete is a search result row.
type StudentAthlete struct {
	ID             int64   `db:"id" json:"id"`
	Username       string  `db:"username" json:"username"`
	FirstName      string  `db:"firstname" json:"firstname"`
	LastName       string  `db:"lastname" json:"lastname"`
	Email          string  `db:"email" json:"email"`
	UniversalID    string  `db:"universal_id" json:"universal_id"`
	College        string  `db:"college" json:"college"`
	Major          string  `db:"major" json:"major"`
	Classification string  `db:"classification" json:"classification"`
	Sports         []Sport `db:"-" json:"sports"`
}
