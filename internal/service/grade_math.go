package service

import (
	"fmt"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

const missingValue = "-"

// letterGrade maps a final grade to A-F. A nil grade renders as "-".
func letterGrade(grade *float64) string {
	if grade == nil {
		return missingValue
	}
	switch g := *grade; {
	case g >= 90:
		return "A"
	case g >= 80:
		return "B"
	case g >= 70:
		return "C"
	case g >= 60:
		return "D"
	default:
		return "F"
	}
}

func formatNumber(v *float64) string {
	if v == nil {
		return missingValue
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatPercent(v *float64) string {
	if v == nil {
		return missingValue
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// gradePercentage needs a grade and a positive maximum.
func gradePercentage(grade, max *float64) *float64 {
	if grade == nil || max == nil || *max <= 0 {
		return nil
	}
	pct := *grade / *max * 100
	return &pct
}

func gradeContribution(percentage, weight *float64) *float64 {
	if percentage == nil || weight == nil {
		return nil
	}
	c := *percentage * *weight / 100
	return &c
}

// effectiveWeight prefers the override when one is set.
func effectiveWeight(rec models.GradeItemRecord) *float64 {
	if rec.WeightOverride != nil {
		return rec.WeightOverride
	}
	return rec.Weight
}

func buildGradeItem(rec models.GradeItemRecord) models.GradeItem {
	weight := effectiveWeight(rec)
	percentage := gradePercentage(rec.Grade, rec.GradeMax)
	contribution := gradeContribution(percentage, weight)
	return models.GradeItem{
		ID:                    rec.ID,
		Name:                  rec.ItemName,
		Type:                  rec.ItemType,
		Module:                rec.ItemModule,
		Weight:                weight,
		WeightFormatted:       formatPercent(weight),
		Grade:                 rec.Grade,
		GradeFormatted:        formatNumber(rec.Grade),
		GradeMax:              rec.GradeMax,
		Percentage:            percentage,
		PercentageFormatted:   formatPercent(percentage),
		Contribution:          contribution,
		ContributionFormatted: formatPercent(contribution),
	}
}
