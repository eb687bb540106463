package models

import "time"

// PlanAttendee links a user to a plan. A row starts life as a join request
// and becomes attendance once the host accepts it.
// status: pending, accepted, declined
type PlanAttendee struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	PlanID uint `json:"planID" gorm:"not null;index"`
	Plan   Plan `json:"plan" gorm:"foreignKey:PlanID"`

	UserID uint `json:"userID" gorm:"not null;index"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	Status  string `json:"status" gorm:"size:16;index"`
	Message string `json:"message" gorm:"size:500"` // optional note from the requester

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	RespondedAt *time.Time `json:"respondedAt"`
}
