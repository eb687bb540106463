package models

import "gorm.io/gorm"

// Review is left by one user on another, typically after attending a plan.
type Review struct {
	gorm.Model
	ReviewerID uint  `json:"reviewerID" gorm:"not null;index"`
	Reviewer   User  `json:"reviewer" gorm:"foreignKey:ReviewerID"`
	SubjectID  uint  `json:"subjectID" gorm:"not null;index"`
	Subject    User  `json:"subject" gorm:"foreignKey:SubjectID"`
	PlanID     *uint `json:"planID" gorm:"index"`
	Plan       *Plan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`

	Body      string `json:"body" gorm:"type:text"`
	Stars     int    `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	IsVisible bool   `json:"isVisible" gorm:"default:true"`
}
