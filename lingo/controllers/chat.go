// lingo/controllers/chat.go
package controllers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"lingo/lingo/services/linkpreview"
	"lingo/lingo/sources/mongo"
	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/psql/models"
	"lingo/lingo/utils/logging"
	"lingo/lingo/utils/types"

	"go.uber.org/zap"
)

type MessageStore interface {
	SaveMessage(ctx context.Context, msg *mongo.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]mongo.Message, error)
}

type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

type LinkPreviewer interface {
	Fetch(ctx context.Context, rawURL string) (linkpreview.Preview, error)
}

// ConversationSummary is a conversation as listed to one of its participants.
type ConversationSummary struct {
	models.Conversation
	PeerID int `json:"peerId"`
}

func summarize(conv models.Conversation, userID int) ConversationSummary {
	peer := userID
	for _, id := range conv.Participants() {
		if id != userID {
			peer = id
		}
	}
	return ConversationSummary{Conversation: conv, PeerID: peer}
}

type ChatController struct {
	conversationDAO *dao.ConversationDAO
	messages        MessageStore
	translator      Translator
	previewer       LinkPreviewer
}

func NewChatController(conversationDAO *dao.ConversationDAO, messages MessageStore, translator Translator, previewer LinkPreviewer) *ChatController {
	return &ChatController{
		conversationDAO: conversationDAO,
		messages:        messages,
		translator:      translator,
		previewer:       previewer,
	}
}

// canAccess allows participants of pair ids; other ids are open.
func canAccess(conversationID string, userID int) bool {
	if _, _, err := models.ParseConversationID(conversationID); errors.Is(err, models.ErrNotPairID) {
		return true
	}
	return models.IsParticipant(conversationID, userID)
}

func (c *ChatController) CreateConversation(ctx context.Context, userID int, req types.CreateConversationRequest) (*models.Conversation, error) {
	if req.UserID1 <= 0 || req.UserID2 <= 0 {
		return nil, newError(ErrInvalidInput, "userId1 and userId2 are required")
	}
	if req.UserID1 == req.UserID2 {
		return nil, newError(ErrInvalidInput, "A conversation needs two different users")
	}
	if userID != req.UserID1 && userID != req.UserID2 {
		return nil, newError(ErrForbidden, "You can only open your own conversations")
	}
	conv, err := c.conversationDAO.CreateOrGetConversation(ctx, req.UserID1, req.UserID2)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (c *ChatController) Conversations(ctx context.Context, userID int) ([]ConversationSummary, error) {
	convs, err := c.conversationDAO.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		out = append(out, summarize(conv, userID))
	}
	return out, nil
}

func (c *ChatController) Conversation(ctx context.Context, userID int, conversationID string) (*ConversationSummary, error) {
	conv, err := c.conversationDAO.GetConversationByID(ctx, strings.TrimSpace(conversationID))
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, newError(ErrNotFound, "Conversation not found")
	}
	if !slices.Contains(conv.Participants(), userID) {
		return nil, newError(ErrForbidden, "You are not part of this conversation")
	}
	summary := summarize(*conv, userID)
	return &summary, nil
}

func (c *ChatController) Messages(ctx context.Context, userID int, conversationID string) ([]mongo.Message, error) {
	defer logging.LogDuration(ctx, "chat_list_messages")()

	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, newError(ErrInvalidInput, "conversationId is required")
	}
	if !canAccess(conversationID, userID) {
		return nil, newError(ErrForbidden, "You are not part of this conversation")
	}
	msgs, err := c.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []mongo.Message{}
	}
	return msgs, nil
}

func (c *ChatController) SendMessage(ctx context.Context, userID int, req types.SendMessageRequest) (*mongo.Message, error) {
	defer logging.LogDuration(ctx, "chat_send_message")()

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" || strings.TrimSpace(req.Text) == "" || req.ReceiverID <= 0 {
		return nil, newError(ErrInvalidInput, "conversationId, text and receiverId are required")
	}
	if !canAccess(conversationID, userID) {
		return nil, newError(ErrForbidden, "You are not part of this conversation")
	}
	if !canAccess(conversationID, req.ReceiverID) {
		return nil, newError(ErrInvalidInput, "receiverId is not part of this conversation")
	}

	msg := &mongo.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		ReceiverID:     req.ReceiverID,
		Text:           req.Text,
	}
	if err := c.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

func (c *ChatController) Translate(ctx context.Context, req types.TranslateRequest) (*types.TranslateResponse, error) {
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.TargetLang) == "" {
		return nil, newError(ErrInvalidInput, "Text and target language are required.")
	}
	translated, err := c.translator.Translate(ctx, req.Text, req.TargetLang)
	if err != nil {
		logging.ErrorLogger.Error("translation failed", zap.String("target_lang", req.TargetLang), zap.Error(err))
		return nil, newError(ErrUpstream, "Failed to translate text.")
	}
	return &types.TranslateResponse{TranslatedText: translated}, nil
}

func (c *ChatController) LinkPreview(ctx context.Context, rawURL string) (*linkpreview.Preview, error) {
	preview, err := c.previewer.Fetch(ctx, rawURL)
	if errors.Is(err, linkpreview.ErrInvalidURL) || errors.Is(err, linkpreview.ErrBlockedAddress) {
		return nil, newError(ErrInvalidInput, err.Error())
	}
	if err != nil {
		logging.AppLogger.Info("link preview failed", zap.String("url", rawURL), zap.Error(err))
		return nil, newError(ErrUpstream, "Failed to fetch link preview.")
	}
	return &preview, nil
}
