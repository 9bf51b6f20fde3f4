package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
	"scoresight/internal/storage"
)

// Claves persistidas del estado de autenticacion.
const (
	TokenKey = "scoresight_token"
	UserKey  = "scoresight_user"
)

// Mensajes visibles para el usuario.
const (
	MsgWelcomeBack        = "Welcome back! Ready for some predictions?"
	MsgCheckingLogin      = "Checking your credentials..."
	MsgLoginOK            = "Welcome back! Time to make some winning predictions!"
	MsgWrongCredentials   = "Oops! Wrong email or password. Are you sure you're not a robot?"
	MsgLoginFailed        = "Login failed. Even the best strikers miss sometimes! Try again?"
	MsgCreatingAccount    = "Creating your account..."
	MsgSignupOK           = "Welcome to Scoresight! Get ready for some winning predictions!"
	MsgAlreadyRegistered  = "You're already part of our winning team! Try logging in instead."
	MsgInvalidSignup      = "Check your info - even VAR would flag this one!"
	MsgSignupFailed       = "Signup failed. Don't worry, even Messi misses penalties sometimes! Try again?"
	MsgNetwork            = "Network error. Check your connection and try again!"
	MsgLogout             = "See you next time! Hope you made some winning predictions!"
	MsgLoginToProfile     = "Please log in to update your profile"
	MsgProfileUpdated     = "Profile updated successfully!"
	MsgProfileFailed      = "Failed to update profile. Please try again."
	MsgLoginToTestimonial = "Please log in to submit feedback"
	MsgTestimonialOK      = "Thank you for your feedback! Your testimonial has been submitted."
	MsgTestimonialFailed  = "Failed to submit feedback. Please try again."
)

var (
	ErrNotAuthenticated = errors.New("auth not authenticated")
	ErrTokenExpired     = errors.New("auth token expired")
	ErrInvalidRating    = errors.New("auth rating must be between 1 and 5")
)

// Backend son los endpoints de autenticacion que usa la sesion.
type Backend interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	Signup(ctx context.Context, req backend.SignupRequest) (domain.User, error)
	CheckAuth(ctx context.Context, token string) (domain.User, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (domain.User, error)
	SubmitTestimonial(ctx context.Context, token string, t domain.Testimonial) error
}

// Session mantiene el usuario autenticado y su token en el Store del cliente.
type Session struct {
	backend Backend
	store   storage.Store
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	user    *domain.User
	token   string
	message string
}

func NewSession(b Backend, store storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return &Session{backend: b, store: store, logger: logger, now: time.Now}
}

// User devuelve el usuario autenticado, si hay uno.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

// Token devuelve el bearer token de la sesion actual.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Message es el ultimo aviso para mostrar al usuario.
func (s *Session) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

func (s *Session) ClearMessage() {
	s.setMessage("")
}

func (s *Session) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Restore recupera la sesion guardada. Un token vencido localmente o
// rechazado por el backend borra los datos persistidos.
func (s *Session) Restore(ctx context.Context) (domain.User, error) {
	token, err := s.store.Get(ctx, TokenKey)
	if err != nil || strings.TrimSpace(token) == "" {
		s.clear(ctx)
		return domain.User{}, ErrNotAuthenticated
	}
	cached, err := s.cachedUser(ctx)
	if err != nil {
		s.logger.Info("cached user unreadable", zap.Error(err))
		s.clear(ctx)
		return domain.User{}, ErrNotAuthenticated
	}
	if tokenExpired(token, s.now()) {
		s.logger.Info("cached token expired")
		s.clear(ctx)
		return domain.User{}, ErrTokenExpired
	}

	if s.backend == nil {
		s.clear(ctx)
		return domain.User{}, ErrNotAuthenticated
	}
	user, err := s.backend.CheckAuth(ctx, token)
	if err != nil {
		s.logger.Info("token validation failed", zap.Error(err))
		s.clear(ctx)
		return domain.User{}, fmt.Errorf("restore session: %w", ErrNotAuthenticated)
	}
	// check puede omitir campos que el cliente ya tenia guardados
	user = mergeUser(cached, user)
	user.Token = token
	if err := s.persistUser(ctx, user); err != nil {
		s.logger.Warn("refresh cached user failed", zap.Error(err))
	}
	s.mu.Lock()
	s.user = &user
	s.token = token
	s.message = MsgWelcomeBack
	s.mu.Unlock()
	return user, nil
}

func (s *Session) cachedUser(ctx context.Context) (domain.User, error) {
	raw, err := s.store.Get(ctx, UserKey)
	if err != nil {
		return domain.User{}, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.User{}, fmt.Errorf("decode cached user: %w", err)
	}
	return user, nil
}

// tokenExpired mira solo el claim exp; la firma la valida el backend. Un
// token que no es JWT se deja pasar.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	s.setMessage(MsgCheckingLogin)
	if s.backend == nil {
		s.setMessage(MsgNetwork)
		return domain.User{}, ErrNotAuthenticated
	}
	user, err := s.backend.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		s.setMessage(loginMessage(err))
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	if err := s.save(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.setMessage(MsgLoginOK)
	return user, nil
}

func (s *Session) Signup(ctx context.Context, req backend.SignupRequest) (domain.User, error) {
	s.setMessage(MsgCreatingAccount)
	if s.backend == nil {
		s.setMessage(MsgNetwork)
		return domain.User{}, ErrNotAuthenticated
	}
	req.Email = strings.TrimSpace(req.Email)
	user, err := s.backend.Signup(ctx, req)
	if err != nil {
		s.logger.Info("signup failed", zap.String("email", req.Email), zap.Error(err))
		s.setMessage(signupMessage(err))
		return domain.User{}, fmt.Errorf("signup: %w", err)
	}
	if err := s.save(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.setMessage(MsgSignupOK)
	return user, nil
}

// Logout borra token y usuario persistidos.
func (s *Session) Logout(ctx context.Context) {
	s.clear(ctx)
	s.setMessage(MsgLogout)
}

// UpdateProfile envia los cambios y mezcla la respuesta sobre el usuario local.
func (s *Session) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	token, current, ok := s.current()
	if !ok {
		s.setMessage(MsgLoginToProfile)
		return domain.User{}, ErrNotAuthenticated
	}
	updated, err := s.backend.UpdateProfile(ctx, token, update)
	if err != nil {
		s.logger.Warn("profile update failed", zap.Error(err))
		s.setMessage(failureMessage(err, MsgProfileFailed))
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	merged := mergeUser(current, updated)
	merged.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.persistUser(ctx, merged); err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	s.user = &merged
	s.message = MsgProfileUpdated
	s.mu.Unlock()
	return merged, nil
}

func (s *Session) SetFavoriteTeam(ctx context.Context, team domain.FootballTeam) (domain.User, error) {
	return s.UpdateProfile(ctx, domain.ProfileUpdate{FavoriteTeam: &team})
}

// SubmitTestimonial publica una valoracion firmada con el usuario actual.
func (s *Session) SubmitTestimonial(ctx context.Context, rating int, comment string) error {
	token, user, ok := s.current()
	if !ok {
		s.setMessage(MsgLoginToTestimonial)
		return ErrNotAuthenticated
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	userName := user.DisplayName
	if userName == "" {
		userName = user.Email
	}
	err := s.backend.SubmitTestimonial(ctx, token, domain.Testimonial{
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
		UserID:   user.ID,
		UserName: userName,
	})
	if err != nil {
		s.logger.Warn("testimonial failed", zap.Error(err))
		s.setMessage(failureMessage(err, MsgTestimonialFailed))
		return fmt.Errorf("submit testimonial: %w", err)
	}
	s.setMessage(MsgTestimonialOK)
	return nil
}

func (s *Session) current() (string, domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" || s.backend == nil {
		return "", domain.User{}, false
	}
	return s.token, *s.user, true
}

func (s *Session) save(ctx context.Context, user domain.User) error {
	if err := s.store.Set(ctx, TokenKey, user.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.persistUser(ctx, user); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &user
	s.token = user.Token
	s.mu.Unlock()
	return nil
}

func (s *Session) persistUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *Session) clear(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("clear auth data failed", zap.String("key", key), zap.Error(err))
		}
	}
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// mergeUser aplica sobre base los campos no vacios de la respuesta.
func mergeUser(base, updated domain.User) domain.User {
	out := base
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.ID, updated.ID)
	set(&out.Email, updated.Email)
	set(&out.FirstName, updated.FirstName)
	set(&out.LastName, updated.LastName)
	set(&out.Token, updated.Token)
	set(&out.DisplayName, updated.DisplayName)
	set(&out.PhoneNumber, updated.PhoneNumber)
	set(&out.DateOfBirth, updated.DateOfBirth)
	set(&out.Location, updated.Location)
	set(&out.AvatarURL, updated.AvatarURL)
	set(&out.CreatedAt, updated.CreatedAt)
	if updated.FavoriteTeam != nil {
		team := *updated.FavoriteTeam
		out.FavoriteTeam = &team
	}
	return out
}

func loginMessage(err error) string {
	switch backend.StatusCode(err) {
	case http.StatusUnauthorized:
		return MsgWrongCredentials
	case 0:
		if errors.Is(err, backend.ErrUnsuccessful) || errors.Is(err, backend.ErrMalformedResponse) {
			return MsgLoginFailed
		}
		return MsgNetwork
	default:
		return MsgLoginFailed
	}
}

func signupMessage(err error) string {
	switch backend.StatusCode(err) {
	case http.StatusBadRequest:
		return MsgAlreadyRegistered
	case http.StatusUnprocessableEntity:
		return MsgInvalidSignup
	case 0:
		if errors.Is(err, backend.ErrUnsuccessful) || errors.Is(err, backend.ErrMalformedResponse) {
			return MsgSignupFailed
		}
		return MsgNetwork
	default:
		return MsgSignupFailed
	}
}

func failureMessage(err error, fallback string) string {
	if backend.StatusCode(err) == 0 && !errors.Is(err, backend.ErrUnsuccessful) && !errors.Is(err, backend.ErrMalformedResponse) {
		return MsgNetwork
	}
	return fallback
}
