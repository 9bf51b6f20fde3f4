package devserver

import (
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"scoresight/internal/domain"
)

const minPasswordLength = 6

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidSignup      = errors.New("invalid signup data")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type account struct {
	user         domain.User
	passwordHash string
}

// UserRegistry guarda las cuentas del backend de desarrollo en memoria.
type UserRegistry struct {
	mu      sync.RWMutex
	byID    map[string]*account
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		byID:    make(map[string]*account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crea la cuenta con la password hasheada con bcrypt.
func (r *UserRegistry) Register(email, password, firstName, lastName string) (domain.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidSignup
	}
	if len(password) < minPasswordLength || strings.TrimSpace(firstName) == "" {
		return domain.User{}, ErrInvalidSignup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return domain.User{}, ErrEmailTaken
	}
	now := r.now().UTC().Format(time.RFC3339)
	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[user.ID] = &account{user: user, passwordHash: string(hash)}
	r.byEmail[email] = user.ID
	return user, nil
}

func (r *UserRegistry) Authenticate(email, password string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	var acc account
	if ok {
		acc = *r.byID[id]
	}
	r.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

func (r *UserRegistry) Get(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return acc.user, nil
}

// Update aplica los cambios del perfil. Un email nuevo no puede estar en uso.
func (r *UserRegistry) Update(id string, update domain.ProfileUpdate) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	oldEmail := acc.user.Email
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.User{}, ErrInvalidSignup
		}
		if owner, taken := r.byEmail[email]; taken && owner != id {
			return domain.User{}, ErrEmailTaken
		}
		update.Email = &email
	}

	acc.user = update.Apply(acc.user)
	acc.user.UpdatedAt = r.now().UTC().Format(time.RFC3339)
	if acc.user.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[acc.user.Email] = id
	}
	return acc.user, nil
}
