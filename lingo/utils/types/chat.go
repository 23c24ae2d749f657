// lingo/utils/types/chat.go
package types

type CreateConversationRequest struct {
	UserID1 int `json:"userId1"`
	UserID2 int `json:"userId2"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	ReceiverID     int    `json:"receiverId"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}
