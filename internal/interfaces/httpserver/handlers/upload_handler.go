package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/chat-api/internal/infrastructure/storage"
	"jan-server/services/chat-api/internal/interfaces/httpserver/responses"
	"jan-server/services/chat-api/utils/platformerrors"
)

const defaultUploadMIME = "image/png"

// UploadIssuer issues short-lived signed-upload descriptors.
type UploadIssuer interface {
	IssueUploadCredential(ctx context.Context, mimeType string) (*storage.UploadCredential, error)
}

// UploadHandler exposes the upload credential endpoint.
type UploadHandler struct {
	issuer UploadIssuer
	log    zerolog.Logger
}

func NewUploadHandler(issuer UploadIssuer, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		issuer: issuer,
		log:    log.With().Str("component", "upload-handler").Logger(),
	}
}

// Credentials godoc
// @Summary      Request upload credentials
// @Description  Returns a short-lived presigned PUT descriptor so the client can push an image directly to storage.
// @Tags         uploads
// @Produce      json
// @Param        mime_type  query     string  false  "Image MIME type"  default(image/png)
// @Success      200        {object}  storage.UploadCredential
// @Failure      400        {object}  responses.ErrorResponse
// @Failure      401        {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/uploads/credentials [get]
func (h *UploadHandler) Credentials(c *gin.Context) {
	mimeType := c.Query("mime_type")
	if mimeType == "" {
		mimeType = defaultUploadMIME
	}

	cred, err := h.issuer.IssueUploadCredential(c.Request.Context(), mimeType)
	if err != nil {
		h.log.Error().Err(err).Str("mime_type", mimeType).Msg("issue upload credential failed")
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return
	}

	c.JSON(http.StatusOK, cred)
}
