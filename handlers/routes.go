package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted on the API router
type Routes struct {
	Chat    *ChatHandler
	Health  *HealthHandler
	Corpus  *CorpusHandler // nil disables the corpus admin endpoints
	Metrics http.Handler

	// AdminTokenHash is the bcrypt hash guarding the corpus endpoints
	AdminTokenHash string
}

// Register mounts every configured handler on r
func (rt Routes) Register(r *gin.Engine) {
	if rt.Health != nil {
		r.GET("/health", rt.Health.Health)
		r.GET("/ready", rt.Health.Ready)
	}
	if rt.Metrics != nil {
		r.GET("/metrics", gin.WrapH(rt.Metrics))
	}

	api := r.Group("/api")
	{
		// Chat endpoints
		api.POST("/chat", rt.Chat.Chat)
		api.DELETE("/chat/sessions/:id", rt.Chat.EndSession)
		api.GET("/chat/sessions/:id/history", rt.Chat.GetHistory)

		// Corpus endpoints
		if rt.Corpus != nil && rt.AdminTokenHash != "" {
			corpus := api.Group("/corpus", RequireAdminToken(rt.AdminTokenHash))
			corpus.POST("", rt.Corpus.UploadDocument)
			corpus.GET("", rt.Corpus.ListDocuments)
			corpus.DELETE("/*path", rt.Corpus.DeleteDocument)
		}
	}
}
