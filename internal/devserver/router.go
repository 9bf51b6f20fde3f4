package devserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter arma las rutas del backend de desarrollo.
func NewRouter(logger *zap.Logger, h *Handlers, tokens *TokenService) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery(), allowBrowserOrigins())

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.GET("/chat/suggestions", h.Suggestions)
	api.GET("/teams", h.Teams)
	api.POST("/half-time-predict", h.HalfTimePredict)

	auth := api.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)

	protected := api.Group("", requireToken(tokens))
	protected.GET("/auth/check", h.CheckAuth)
	protected.PUT("/auth/profile", h.UpdateProfile)
	protected.POST("/testimonials", h.SubmitTestimonial)

	return r
}
