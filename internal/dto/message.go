package dto

// MessageRequest is an inbound chat event posted to the synchronous API.
// Exactly one of Text and CallbackData is expected.
type MessageRequest struct {
	ChatID       int64  `json:"chat_id"`
	Text         string `json:"text,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

type ButtonResponse struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type ReplyResponse struct {
	ChatID   int64              `json:"chat_id"`
	Text     string             `json:"text"`
	Markdown bool               `json:"markdown,omitempty"`
	Keyboard [][]ButtonResponse `json:"keyboard,omitempty"`
}

type MessageResponse struct {
	Replies []ReplyResponse `json:"replies"`
}
