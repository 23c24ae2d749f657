package models

import "time"

// Friendship is one direction of a friend link. Both directions are always
// stored together.
type Friendship struct {
	UserID    int       `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	FriendID  int       `json:"friendId" gorm:"primaryKey;autoIncrement:false;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Friend    *User     `json:"-" gorm:"foreignKey:FriendID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}
