package handlers

import (
	"github.com/rs/zerolog"
)

// Provider wires HTTP handlers.
type Provider struct {
	Chat   *ChatHandler
	Upload *UploadHandler
}

func NewProvider(chatService ChatService, uploadIssuer UploadIssuer, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:   NewChatHandler(chatService, log),
		Upload: NewUploadHandler(uploadIssuer, log),
	}
}
