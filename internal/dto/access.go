package dto

import "github.com/noah-isme/sportsgrades-api/internal/models"

// CreateAccessGrantRequest adds one grant per listed user. A missing or zero sport_id grants all sports.
type CreateAccessGrantRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,dive,gt=0"`
	SportID *int64  `json:"sport_id" validate:"omitempty,gte=0"`
}

// CreateStudentGrantRequest lets a user view one specific student.
type CreateStudentGrantRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// AccessGrantGroup lists the grants for one sport label.
type AccessGrantGroup struct {
	Sport  string                     `json:"sport"`
	Grants []models.AccessGrantDetail `json:"grants"`
}
