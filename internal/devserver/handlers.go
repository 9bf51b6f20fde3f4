package devserver

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
	"scoresight/internal/prediction"
)

// Handlers atiende la API del backend de desarrollo.
type Handlers struct {
	logger *zap.Logger
	users  *UserRegistry
	tokens *TokenService
	now    func() time.Time

	mu           sync.Mutex
	testimonials []domain.Testimonial
}

func NewHandlers(logger *zap.Logger, users *UserRegistry, tokens *TokenService) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{logger: logger, users: users, tokens: tokens, now: time.Now}
}

// Chat maneja POST /api/chat.
func (h *Handlers) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	a := route(req.Message)
	resp := gin.H{
		"response":  a.text,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"source":    a.source,
	}
	if a.confidence != nil {
		resp["confidence"] = a.confidence
	}
	c.JSON(http.StatusOK, resp)
}

// Suggestions maneja GET /api/chat/suggestions.
func (h *Handlers) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Teams maneja GET /api/teams.
func (h *Handlers) Teams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// HalfTimePredict maneja POST /api/half-time-predict con la estimacion heuristica.
func (h *Handlers) HalfTimePredict(c *gin.Context) {
	var req backend.HalfTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	form := prediction.Form{
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Score:    domain.Pair{Home: req.HomeScore, Away: req.AwayScore},
		Stats: domain.MatchStats{
			Shots:         domain.Pair{Home: req.MatchStats.HS, Away: req.MatchStats.AS},
			ShotsOnTarget: domain.Pair{Home: req.MatchStats.HST, Away: req.MatchStats.AST},
			Corners:       domain.Pair{Home: req.MatchStats.HC, Away: req.MatchStats.AC},
			Fouls:         domain.Pair{Home: req.MatchStats.HF, Away: req.MatchStats.AF},
			YellowCards:   domain.Pair{Home: req.MatchStats.HY, Away: req.MatchStats.AY},
			RedCards:      domain.Pair{Home: req.MatchStats.HR, Away: req.MatchStats.AR},
			Possession:    domain.Pair{Home: 50, Away: 50},
		},
	}
	if err := form.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prediction.Estimate(form.Score))
}

// Signup maneja POST /api/auth/signup.
func (h *Handlers) Signup(c *gin.Context) {
	var req backend.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid request"})
		return
	}
	user, err := h.users.Register(req.Email, req.Password, req.FirstName, req.LastName)
	switch {
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email already registered"})
		return
	case errors.Is(err, ErrInvalidSignup):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid signup data"})
		return
	case err != nil:
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not create user"})
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

// Login maneja POST /api/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}
	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handlers) respondWithToken(c *gin.Context, status int, user domain.User) {
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("issue token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not issue token"})
		return
	}
	user.Token = token
	c.JSON(status, gin.H{"success": true, "user": user})
}

// CheckAuth maneja GET /api/auth/check.
func (h *Handlers) CheckAuth(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

// UpdateProfile maneja PUT /api/auth/profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing token"})
		return
	}
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}
	user, err := h.users.Update(claims.UserID, update)
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unknown user"})
		return
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email already registered"})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid profile data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// SubmitTestimonial maneja POST /api/testimonials.
func (h *Handlers) SubmitTestimonial(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing token"})
		return
	}
	var t domain.Testimonial
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}
	if t.Rating < 1 || t.Rating > 5 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "rating must be between 1 and 5"})
		return
	}
	t.UserID = claims.UserID

	h.mu.Lock()
	h.testimonials = append(h.testimonials, t)
	h.mu.Unlock()
	h.logger.Info("testimonial received", zap.String("user_id", t.UserID), zap.Int("rating", t.Rating))
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// Testimonials devuelve una copia de las valoraciones recibidas.
func (h *Handlers) Testimonials() []domain.Testimonial {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Testimonial(nil), h.testimonials...)
}

func (h *Handlers) currentUser(c *gin.Context) (domain.User, bool) {
	claims, ok := claimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return domain.User{}, false
	}
	user, err := h.users.Get(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return domain.User{}, false
	}
	return user, true
}
