package models

// Metadata datatypes fed into student_meta and course_meta by the student information system.
const (
	DatatypeAthleticTeam   = "Athletic_Team_ID"
	DatatypeCollege        = "college"
	DatatypeMajor          = "major"
	DatatypeClassification = "classification"
	DatatypeTermCode       = "term_code"
	DatatypeSectionCode    = "section_code"
)

// Sport is a team students can be members of. Code is the natural key.
type Sport struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// StudentSport is a sport membership row for a student in the active period.
type StudentSport struct {
	StudentID int64 `db:"student_id"`
	Sport
}
