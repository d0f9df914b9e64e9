package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/models"
	"dermo-chatbot-platform/services"
	"dermo-chatbot-platform/utils"
)

func SetupChatRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, chatService *services.ChatService) {
	chat := router.Group("/chat")

	// MAIN CHAT ENDPOINT
	chat.POST("/send", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithCustomTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		resp, err := chatService.Send(ctx, req.SessionID, req.Message)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate response", err.Error())
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	// CONVERSATION HISTORY
	chat.GET("/history/:session_id", func(c *gin.Context) {
		sessionID := c.Param("session_id")
		if sessionID == "" {
			utils.RespondWithBadRequest(c, "Session ID required", nil)
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		history, err := chatService.History(ctx, sessionID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve conversation", err.Error())
			return
		}
		if len(history.Messages) == 0 {
			utils.RespondWithNotFound(c, "Conversation not found")
			return
		}

		c.JSON(http.StatusOK, history)
	})

	// GREETING shown by the frontend before the first user message
	chat.GET("/greeting", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": services.Greeting})
	})

	// HEALTH CHECK
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := utils.WithShortTimeout(c.Request.Context())
		defer cancel()

		if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"mongo":  err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}
