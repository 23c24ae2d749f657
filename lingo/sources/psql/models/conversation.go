package models

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	conversationPrefix = "pair-"
	conversationSep    = "-and-"
)

var ErrNotPairID = errors.New("not a pair conversation id")

// Conversation is a one-to-one chat between two users. Its id is derived
// from the pair so both sides compute the same one.
type Conversation struct {
	ID        string    `json:"_id" gorm:"type:varchar(128);primaryKey"`
	UserA     int       `json:"userA" gorm:"not null;index"`
	UserB     int       `json:"userB" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participants returns both user ids, in id order.
func (c Conversation) Participants() []int {
	return []int{c.UserA, c.UserB}
}

// ConversationID returns "pair-<x>-and-<y>" where x and y are the decimal ids
// sorted as strings, matching the id the web client builds.
func ConversationID(userA, userB int) string {
	ids := []string{strconv.Itoa(userA), strconv.Itoa(userB)}
	sort.Strings(ids)
	return conversationPrefix + strings.Join(ids, conversationSep)
}

// ParseConversationID is the inverse of ConversationID.
func ParseConversationID(id string) (int, int, error) {
	rest, ok := strings.CutPrefix(id, conversationPrefix)
	if !ok {
		return 0, 0, ErrNotPairID
	}
	left, right, ok := strings.Cut(rest, conversationSep)
	if !ok {
		return 0, 0, ErrNotPairID
	}
	a, err := strconv.Atoi(left)
	if err != nil || a <= 0 {
		return 0, 0, ErrNotPairID
	}
	b, err := strconv.Atoi(right)
	if err != nil || b <= 0 {
		return 0, 0, ErrNotPairID
	}
	return a, b, nil
}

// IsParticipant reports whether userID is one side of a pair conversation id.
func IsParticipant(conversationID string, userID int) bool {
	a, b, err := ParseConversationID(conversationID)
	if err != nil {
		return false
	}
	return a == userID || b == userID
}
