package models

import (
	"fmt"
	"sort"
	"time"
)

// AllSportsLabel is shown for grants without a sport.
const AllSportsLabel = "All Sports"

// AccessGrant lets a user view students of one sport, or of every sport when SportID is nil or zero.
type AccessGrant struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	SportID      *int64    `db:"sport_id" json:"sport_id"`
	TimeCreated  time.Time `db:"time_created" json:"time_created"`
	TimeModified time.Time `db:"time_modified" json:"time_modified"`
	CreatedBy    int64     `db:"created_by" json:"created_by"`
	ModifiedBy   int64     `db:"modified_by" json:"modified_by"`
}

// AllSports reports whether the grant is the unrestricted sentinel.
func (g AccessGrant) AllSports() bool {
	return g.SportID == nil || *g.SportID == 0
}

// AccessGrantDetail joins a grant with its user and sport for display and policy resolution.
type AccessGrantDetail struct {
	AccessGrant
	Username  string  `db:"username" json:"username"`
	FirstName string  `db:"firstname" json:"firstname"`
	LastName  string  `db:"lastname" json:"lastname"`
	SportCode *string `db:"sport_code" json:"sport_code,omitempty"`
	SportName *string `db:"sport_name" json:"sport_name,omitempty"`
}

// SportLabel returns the sport name, "All Sports" for the sentinel grant, or an
// unknown marker when the referenced sport no longer exists.
func (d AccessGrantDetail) SportLabel() string {
	if d.AllSports() {
		return AllSportsLabel
	}
	if d.SportName == nil || *d.SportName == "" {
		return fmt.Sprintf("Unknown sport (#%d)", *d.SportID)
	}
	return *d.SportName
}

// StudentGrant lets a user view one specific student.
type StudentGrant struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	StudentID   int64     `db:"student_id" json:"student_id"`
	TimeCreated time.Time `db:"time_created" json:"time_created"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
}

// StudentGrantDetail adds display names to a student grant.
type StudentGrantDetail struct {
	StudentGrant
	Username         string `db:"username" json:"username"`
	FirstName        string `db:"firstname" json:"firstname"`
	LastName         string `db:"lastname" json:"lastname"`
	StudentFirstName string `db:"student_firstname" json:"student_firstname"`
	StudentLastName  string `db:"student_lastname" json:"student_lastname"`
}

// AccessPolicy is the resolved set of students a requester may see.
type AccessPolicy struct {
	AllSports  bool     `json:"all_sports"`
	SportCodes []string `json:"sport_codes"`
	StudentIDs []int64  `json:"student_ids"`
}

// NewAccessPolicy returns a policy that sees nothing.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{SportCodes: []string{}, StudentIDs: []int64{}}
}

// Empty reports whether the policy grants no visibility at all.
func (p *AccessPolicy) Empty() bool {
	return p == nil || (!p.AllSports && len(p.SportCodes) == 0 && len(p.StudentIDs) == 0)
}

// AddSport records a sport code, ignoring duplicates.
func (p *AccessPolicy) AddSport(code string) {
	if code == "" || p.HasSport(code) {
		return
	}
	p.SportCodes = append(p.SportCodes, code)
	sort.Strings(p.SportCodes)
}

// AddStudent records a directly granted student, ignoring duplicates.
func (p *AccessPolicy) AddStudent(id int64) {
	if id <= 0 || p.HasStudent(id) {
		return
	}
	p.StudentIDs = append(p.StudentIDs, id)
	sort.Slice(p.StudentIDs, func(i, j int) bool { return p.StudentIDs[i] < p.StudentIDs[j] })
}

// HasSport reports whether the sport code was granted.
func (p *AccessPolicy) HasSport(code string) bool {
	for _, c := range p.SportCodes {
		if c == code {
			return true
		}
	}
	return false
}

// HasStudent reports whether the student was granted directly.
func (p *AccessPolicy) HasStudent(id int64) bool {
	for _, s := range p.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}
