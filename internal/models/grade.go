package models

import "time"

// GradeItemTypeCourse marks the course-total pseudo item.
const GradeItemTypeCourse = "course"

// Course is a course the student is enrolled in, with term and section labels resolved.
type Course struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"fullname"`
	ShortName string    `db:"shortname"`
	Term      string    `db:"term"`
	Section   string    `db:"section"`
	StartDate time.Time `db:"start_date"`
}

// GradeItemRecord is a gradable item joined with the student's grade, as stored by the grading engine.
type GradeItemRecord struct {
	ID             int64    `db:"id"`
	ItemName       string   `db:"item_name"`
	ItemType       string   `db:"item_type"`
	ItemModule     string   `db:"item_module"`
	GradeMax       *float64 `db:"grade_max"`
	Weight         *float64 `db:"weight"`
	WeightOverride *float64 `db:"weight_override"`
	Grade          *float64 `db:"final_grade"`
}

// GradeItem is one graded component of a course as shown to mentors.
type GradeItem struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Type                  string   `json:"type"`
	Module                string   `json:"module"`
	Weight                *float64 `json:"weight"`
	WeightFormatted       string   `json:"weight_formatted"`
	Grade                 *float64 `json:"grade"`
	GradeFormatted        string   `json:"grade_formatted"`
	GradeMax              *float64 `json:"grade_max"`
	Percentage            *float64 `json:"percentage"`
	PercentageFormatted   string   `json:"percentage_formatted"`
	Contribution          *float64 `json:"contribution"`
	ContributionFormatted string   `json:"contribution_formatted"`
}

// CourseGrade is the final grade and item breakdown for one course.
type CourseGrade struct {
	ID                  int64       `json:"id"`
	FullName            string      `json:"fullname"`
	ShortName           string      `json:"shortname"`
	Section             string      `json:"section"`
	Term                string      `json:"term"`
	StartDate           time.Time   `json:"start_date"`
	FinalGrade          *float64    `json:"final_grade"`
	FinalGradeFormatted string      `json:"final_grade_formatted"`
	LetterGrade         string      `json:"letter_grade"`
	GradeItems          []GradeItem `json:"grade_items"`
}

// GradeReport is the cached unit: every course of one student.
type GradeReport struct {
	StudentID   int64         `json:"student_id"`
	Courses     []CourseGrade `json:"courses"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// CachedGradeResult is one immutable row of the grade cache table.
type CachedGradeResult struct {
	ID          int64     `db:"id"`
	StudentID   int64     `db:"student_id"`
	Payload     []byte    `db:"payload"`
	TimeCreated time.Time `db:"time_created"`
	TimeExpires time.Time `db:"time_expires"`
}
