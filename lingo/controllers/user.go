// lingo/controllers/user.go
package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/psql/models"
	"lingo/lingo/sources/storage"
	"lingo/lingo/utils/logging"

	"go.uber.org/zap"
)

const MaxAvatarBytes = 5 << 20

// Presence reports which users have an open socket.
type Presence interface {
	Online(ctx context.Context, userIDs []int) (map[int]bool, error)
}

type AvatarStore interface {
	PutAvatar(ctx context.Context, userID int, contentType string, data []byte) (string, error)
	GetAvatar(ctx context.Context, userID int) (io.ReadCloser, string, error)
}

// Friend is a friend as listed to the current user.
type Friend struct {
	models.User
	Online bool `json:"online"`
}

type FriendRequests struct {
	IncomingReqs []models.FriendRequest `json:"incomingReqs"`
	AcceptedReqs []models.FriendRequest `json:"acceptedReqs"`
}

type UserController struct {
	userDAO          *dao.UserDAO
	friendRequestDAO *dao.FriendRequestDAO
	presence         Presence
	avatars          AvatarStore
}

func NewUserController(userDAO *dao.UserDAO, friendRequestDAO *dao.FriendRequestDAO, presence Presence, avatars AvatarStore) *UserController {
	return &UserController{
		userDAO:          userDAO,
		friendRequestDAO: friendRequestDAO,
		presence:         presence,
		avatars:          avatars,
	}
}

func AvatarPath(userID int) string {
	return fmt.Sprintf("/api/users/%d/avatar", userID)
}

func (c *UserController) RecommendedUsers(ctx context.Context, userID int) ([]models.User, error) {
	users, err := c.userDAO.GetRecommendedUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (c *UserController) Friends(ctx context.Context, userID int) ([]Friend, error) {
	users, err := c.userDAO.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	online := map[int]bool{}
	if c.presence != nil && len(ids) > 0 {
		online, err = c.presence.Online(ctx, ids)
		if err != nil {
			// a presence outage shows everyone offline rather than failing the list
			logging.ErrorLogger.Warn("presence lookup failed", zap.Int("user_id", userID), zap.Error(err))
			online = map[int]bool{}
		}
	}

	friends := make([]Friend, len(users))
	for i, u := range users {
		friends[i] = Friend{User: u, Online: online[u.ID]}
	}
	return friends, nil
}

func (c *UserController) FriendProfile(ctx context.Context, friendID int) (*models.Profile, error) {
	user, err := c.userDAO.GetUserByID(ctx, friendID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrNotFound, "Friend not found")
	}
	profile := user.Profile()
	return &profile, nil
}

func (c *UserController) SendFriendRequest(ctx context.Context, userID, recipientID int) (*models.FriendRequest, error) {
	if userID == recipientID {
		return nil, newError(ErrInvalidInput, "You can't send friend request to yourself")
	}
	recipient, err := c.userDAO.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, newError(ErrNotFound, "Recipient not found")
	}
	friends, err := c.userDAO.AreFriends(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, newError(ErrInvalidInput, "You are already friends with this user")
	}
	existing, err := c.friendRequestDAO.FindBetween(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(ErrInvalidInput, "A friend request already exists between you and this user")
	}

	req, err := c.friendRequestDAO.CreateFriendRequest(ctx, userID, recipientID)
	if errors.Is(err, dao.ErrFriendRequestExists) {
		return nil, newError(ErrInvalidInput, "A friend request already exists between you and this user")
	}
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return req, nil
}

func (c *UserController) AcceptFriendRequest(ctx context.Context, userID, requestID int) (*models.FriendRequest, error) {
	req, err := c.friendRequestDAO.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, newError(ErrNotFound, "Friend request not found")
	}
	if req.RecipientID != userID {
		return nil, newError(ErrForbidden, "You are not authorized to accept this request")
	}
	if req.Status == models.FriendRequestAccepted {
		return req, nil
	}
	if err := c.friendRequestDAO.AcceptFriendRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("accept friend request: %w", err)
	}
	return req, nil
}

func (c *UserController) FriendRequests(ctx context.Context, userID int) (*FriendRequests, error) {
	incoming, err := c.friendRequestDAO.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted, err := c.friendRequestDAO.ListAcceptedOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if incoming == nil {
		incoming = []models.FriendRequest{}
	}
	if accepted == nil {
		accepted = []models.FriendRequest{}
	}
	return &FriendRequests{IncomingReqs: incoming, AcceptedReqs: accepted}, nil
}

func (c *UserController) OutgoingFriendRequests(ctx context.Context, userID int) ([]models.FriendRequest, error) {
	reqs, err := c.friendRequestDAO.ListOutgoingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.FriendRequest{}
	}
	return reqs, nil
}

func (c *UserController) UpdateAvatar(ctx context.Context, userID int, contentType string, data []byte) (*models.User, error) {
	defer logging.LogDuration(ctx, "user_update_avatar")()

	if !strings.HasPrefix(contentType, "image/") {
		return nil, newError(ErrInvalidInput, "Avatar must be an image")
	}
	if len(data) == 0 {
		return nil, newError(ErrInvalidInput, "Avatar is empty")
	}
	if len(data) > MaxAvatarBytes {
		return nil, newError(ErrInvalidInput, "Avatar must be at most 5 MiB")
	}

	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "User not found")
	}
	if _, err := c.avatars.PutAvatar(ctx, userID, contentType, data); err != nil {
		logging.ErrorLogger.Error("avatar upload failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, newError(ErrUpstream, "Failed to store avatar")
	}
	user.ProfilePic = AvatarPath(userID)
	if err := c.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Avatar returns the stored avatar; the caller closes it.
func (c *UserController) Avatar(ctx context.Context, userID int) (io.ReadCloser, string, error) {
	body, contentType, err := c.avatars.GetAvatar(ctx, userID)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, "", newError(ErrNotFound, "Avatar not found")
	}
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}
