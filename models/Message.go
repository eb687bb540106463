package models

import "time"

// Message belongs to a chat and a sender, ordered by creation time.
type Message struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ChatID uint `json:"chatID" gorm:"not null;index"`
	Chat   Chat `json:"chat" gorm:"foreignKey:ChatID"`

	SenderID uint `json:"senderID" gorm:"not null;index"`
	Sender   User `json:"sender" gorm:"foreignKey:SenderID"`

	Content string `json:"content" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
}
