package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/chats", r.handlers.Chat.Start)
	group.GET("/chats", r.handlers.Chat.List)
	group.GET("/chats/:id", r.handlers.Chat.Get)
	group.PUT("/chats/:id", r.handlers.Chat.Continue)
	group.GET("/uploads/credentials", r.handlers.Upload.Credentials)
}
