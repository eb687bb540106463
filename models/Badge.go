package models

import "time"

// Badge is a catalog row; UserBadge records an award.
type Badge struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"size:40;uniqueIndex"`
	Name        string `json:"name" gorm:"size:80"`
	Description string `json:"description" gorm:"size:256"`
	IconURL     string `json:"iconURL" gorm:"size:512"`
}

type UserBadge struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	UserID  uint  `json:"userID" gorm:"not null;index:idx_user_badge,unique"`
	User    User  `json:"user" gorm:"foreignKey:UserID"`
	BadgeID uint  `json:"badgeID" gorm:"not null;index:idx_user_badge,unique"`
	Badge   Badge `json:"badge" gorm:"foreignKey:BadgeID"`

	AwardedAt time.Time `json:"awardedAt"`
}
