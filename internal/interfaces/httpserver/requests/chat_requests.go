package requests

// StartChatRequest opens a new conversation with the caller's first message.
type StartChatRequest struct {
	Text  string `json:"text" binding:"required"`
	Image string `json:"image,omitempty"`
}

// ContinueChatRequest appends a question/answer exchange. Question may be
// empty for a model-only continuation (e.g. a regenerated answer); the
// image only applies when a question is present.
type ContinueChatRequest struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer" binding:"required"`
	Image    string `json:"image,omitempty"`
}

// UploadCredentialRequest asks for a signed-upload descriptor.
type UploadCredentialRequest struct {
	MimeType string `form:"mime_type" json:"mime_type"`
}
