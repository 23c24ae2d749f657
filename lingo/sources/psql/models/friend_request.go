package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
)

type FriendRequest struct {
	ID          int       `json:"_id" gorm:"primaryKey;autoIncrement"`
	SenderID    int       `json:"senderId" gorm:"not null;index"`
	Sender      *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE"`
	RecipientID int       `json:"recipientId" gorm:"not null;index"`
	Recipient   *User     `json:"recipient,omitempty" gorm:"foreignKey:RecipientID;references:ID;constraint:OnDelete:CASCADE"`
	Status      string    `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	// UserLo and UserHi are the pair sorted, so one request covers both directions.
	UserLo      int       `json:"-" gorm:"not null;uniqueIndex:idx_friend_requests_pair"`
	UserHi      int       `json:"-" gorm:"not null;uniqueIndex:idx_friend_requests_pair"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

func (r *FriendRequest) BeforeCreate(*gorm.DB) error {
	r.UserLo, r.UserHi = r.SenderID, r.RecipientID
	if r.UserLo > r.UserHi {
		r.UserLo, r.UserHi = r.UserHi, r.UserLo
	}
	return nil
}
