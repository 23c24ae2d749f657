package dao

import (
	"context"
	"errors"

	"lingo/lingo/sources/psql/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

// CreateOrGetConversation returns the conversation for the pair, creating it
// on first use. Concurrent callers for the same pair get the same row.
func (dao *ConversationDAO) CreateOrGetConversation(ctx context.Context, userA, userB int) (*models.Conversation, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	conv := models.Conversation{
		ID:    models.ConversationID(userA, userB),
		UserA: userA,
		UserB: userB,
	}
	db := dao.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&conv).Error; err != nil {
		return nil, err
	}
	var stored models.Conversation
	if err := db.First(&stored, "id = ?", conv.ID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (dao *ConversationDAO) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) ListConversationsForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := dao.DB.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at desc").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}
