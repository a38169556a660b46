package dto

import "github.com/noah-isme/sportsgrades-api/internal/models"

// SearchResponse is the payload of the student search call.
type SearchResponse struct {
	Success bool                    `json:"success"`
	Results []models.StudentAthlete `json:"results"`
}
