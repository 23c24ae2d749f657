package dao

import (
	"context"
	"errors"
	"strings"

	"lingo/lingo/sources/psql/models"

	"gorm.io/gorm"
)

type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

func (dao *UserDAO) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return dao.DB.WithContext(ctx).Create(user).Error
}

// UpdateUser updates user fields in DB based on the values in the struct.
func (dao *UserDAO) UpdateUser(ctx context.Context, user *models.User) error {
	return dao.DB.WithContext(ctx).Save(user).Error
}

// GetRecommendedUsers lists onboarded users that are neither userID nor
// already friends with userID.
func (dao *UserDAO) GetRecommendedUsers(ctx context.Context, userID int) ([]models.User, error) {
	friendIDs := dao.DB.Model(&models.Friendship{}).Select("friend_id").Where("user_id = ?", userID)

	var users []models.User
	err := dao.DB.WithContext(ctx).
		Where("id <> ?", userID).
		Where("is_onboarded = ?", true).
		Where("id NOT IN (?)", friendIDs).
		Order("created_at desc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (dao *UserDAO) GetFriends(ctx context.Context, userID int) ([]models.User, error) {
	var users []models.User
	err := dao.DB.WithContext(ctx).
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("users.full_name asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (dao *UserDAO) AreFriends(ctx context.Context, userID, otherID int) (bool, error) {
	var count int64
	err := dao.DB.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
