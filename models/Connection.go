package models

import "time"

// Connection is a one-way follow edge between two users.
type Connection struct {
	ID uint `json:"id" gorm:"primaryKey"`

	FollowerID uint `json:"followerID" gorm:"not null;index:idx_connection_pair,unique"`
	Follower   User `json:"follower" gorm:"foreignKey:FollowerID"`

	FolloweeID uint `json:"followeeID" gorm:"not null;index:idx_connection_pair,unique"`
	Followee   User `json:"followee" gorm:"foreignKey:FolloweeID"`

	CreatedAt time.Time `json:"createdAt"`
}
