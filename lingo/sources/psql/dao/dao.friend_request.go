package dao

import (
	"context"
	"errors"

	"lingo/lingo/sources/psql/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrFriendRequestExists = errors.New("friend request already exists")

type FriendRequestDAO struct {
	DB *gorm.DB
}

func NewFriendRequestDAO(db *gorm.DB) *FriendRequestDAO {
	return &FriendRequestDAO{DB: db}
}

// CreateFriendRequest inserts a pending request. It returns
// ErrFriendRequestExists when any request already links the pair.
func (dao *FriendRequestDAO) CreateFriendRequest(ctx context.Context, senderID, recipientID int) (*models.FriendRequest, error) {
	req := models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestPending,
	}
	res := dao.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&req)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrFriendRequestExists
	}
	return &req, nil
}

func (dao *FriendRequestDAO) GetFriendRequestByID(ctx context.Context, id int) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := dao.DB.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindBetween returns any request between the two users, in either direction.
func (dao *FriendRequestDAO) FindBetween(ctx context.Context, userID, otherID int) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := dao.DB.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (dao *FriendRequestDAO) ListIncomingPending(ctx context.Context, recipientID int) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := dao.DB.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ? AND status = ?", recipientID, models.FriendRequestPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListAcceptedOutgoing lists requests this user sent that were accepted,
// so the client can notify "X accepted your request".
func (dao *FriendRequestDAO) ListAcceptedOutgoing(ctx context.Context, senderID int) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := dao.DB.WithContext(ctx).
		Preload("Recipient").
		Where("sender_id = ? AND status = ?", senderID, models.FriendRequestAccepted).
		Order("updated_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (dao *FriendRequestDAO) ListOutgoingPending(ctx context.Context, senderID int) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := dao.DB.WithContext(ctx).
		Preload("Recipient").
		Where("sender_id = ? AND status = ?", senderID, models.FriendRequestPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// AcceptFriendRequest marks req accepted and links both users, atomically.
func (dao *FriendRequestDAO) AcceptFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req.Status = models.FriendRequestAccepted
		if err := tx.Model(req).Update("status", req.Status).Error; err != nil {
			return err
		}
		links := []models.Friendship{
			{UserID: req.SenderID, FriendID: req.RecipientID},
			{UserID: req.RecipientID, FriendID: req.SenderID},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}
