package models

import "time"

// Chat is either a 1:1 "direct" conversation or the group conversation of a
// plan. The last-message columns are denormalized for inbox rendering and are
// updated in the same transaction as the message insert.
type Chat struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Type   string `json:"type" gorm:"size:16;index"` // direct | plan
	PlanID *uint  `json:"planID" gorm:"index"`
	Plan   *Plan  `json:"plan" gorm:"foreignKey:PlanID"`

	CreatedByID uint `json:"createdByID" gorm:"not null;index"`
	CreatedBy   User `json:"createdBy" gorm:"foreignKey:CreatedByID"`

	LastMessageText string     `json:"lastMessageText" gorm:"size:512"`
	LastMessageAt   *time.Time `json:"lastMessageAt" gorm:"index"`

	Members []ChatMember `json:"members" gorm:"foreignKey:ChatID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMember is the membership join table. Reading or sending in a chat
// requires a row here.
type ChatMember struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ChatID uint `json:"chatID" gorm:"not null;index:idx_chat_member,unique"`
	Chat   Chat `json:"chat" gorm:"foreignKey:ChatID"`

	UserID uint `json:"userID" gorm:"not null;index:idx_chat_member,unique"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"createdAt"`
}
