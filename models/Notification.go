package models

import "time"

// Notification targets one user, optionally referencing the user who caused
// it and the plan it is about. The client resolves the action set from Type.
type Notification struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"userID" gorm:"not null;index"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	SenderID *uint `json:"senderID" gorm:"index"`
	Sender   *User `json:"sender" gorm:"foreignKey:SenderID"`

	PlanID *uint `json:"planID" gorm:"index"`
	Plan   *Plan `json:"plan" gorm:"foreignKey:PlanID"`

	Type    string `json:"type" gorm:"size:32;index"` // join_request, join_accepted, join_declined, new_message, ...
	Title   string `json:"title" gorm:"size:100"`
	Message string `json:"message" gorm:"size:500"`

	IsRead    bool       `json:"isRead" gorm:"default:false;index"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}
