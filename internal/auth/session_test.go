package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
	"scoresight/internal/storage"
)

type mockAuthBackend struct {
	user        domain.User
	err         error
	checkCalls  int
	lastToken   string
	lastUpdate  domain.ProfileUpdate
	testimonial *domain.Testimonial
}

func (m *mockAuthBackend) Login(_ context.Context, email, _ string) (domain.User, error) {
	if m.err != nil {
		return domain.User{}, m.err
	}
	u := m.user
	u.Email = email
	return u, nil
}

func (m *mockAuthBackend) Signup(_ context.Context, req backend.SignupRequest) (domain.User, error) {
	if m.err != nil {
		return domain.User{}, m.err
	}
	u := m.user
	u.Email = req.Email
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	return u, nil
}

func (m *mockAuthBackend) CheckAuth(_ context.Context, token string) (domain.User, error) {
	m.checkCalls++
	m.lastToken = token
	if m.err != nil {
		return domain.User{}, m.err
	}
	u := m.user
	u.Token = ""
	return u, nil
}

func (m *mockAuthBackend) UpdateProfile(_ context.Context, token string, update domain.ProfileUpdate) (domain.User, error) {
	m.lastToken = token
	m.lastUpdate = update
	if m.err != nil {
		return domain.User{}, m.err
	}
	return update.Apply(domain.User{ID: m.user.ID}), nil
}

func (m *mockAuthBackend) SubmitTestimonial(_ context.Context, token string, t domain.Testimonial) error {
	m.lastToken = token
	if m.err != nil {
		return m.err
	}
	m.testimonial = &t
	return nil
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func seedStore(t *testing.T, token string, user domain.User) storage.Store {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()
	raw, _ := json.Marshal(user)
	if err := store.Set(ctx, TokenKey, token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := store.Set(ctx, UserKey, string(raw)); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return store
}

func assertCleared(t *testing.T, store storage.Store) {
	t.Helper()
	for _, key := range []string{TokenKey, UserKey} {
		if _, err := store.Get(context.Background(), key); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected %s cleared, got %v", key, err)
		}
	}
}

func TestRestore(t *testing.T) {
	user := domain.User{ID: "u1", Email: "fan@scoresight.io"}
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, time.Now().Add(time.Hour))
		mock := &mockAuthBackend{user: user}
		s := NewSession(mock, seedStore(t, token, user), nil)

		got, err := s.Restore(ctx)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if got.ID != "u1" || got.Token != token {
			t.Fatalf("unexpected user %+v", got)
		}
		if mock.lastToken != token || !s.IsAuthenticated() {
			t.Fatalf("expected session authenticated with cached token")
		}
		if s.Message() != MsgWelcomeBack {
			t.Fatalf("unexpected message %q", s.Message())
		}
	})

	t.Run("expired token cleared without backend call", func(t *testing.T) {
		token := signToken(t, time.Now().Add(-time.Minute))
		mock := &mockAuthBackend{user: user}
		store := seedStore(t, token, user)
		s := NewSession(mock, store, nil)

		if _, err := s.Restore(ctx); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if mock.checkCalls != 0 {
			t.Fatalf("expected no backend call")
		}
		assertCleared(t, store)
	})

	t.Run("backend rejects", func(t *testing.T) {
		mock := &mockAuthBackend{err: &backend.StatusError{Code: 401}}
		store := seedStore(t, "opaque-token", user)
		s := NewSession(mock, store, nil)

		if _, err := s.Restore(ctx); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if mock.checkCalls != 1 {
			t.Fatalf("opaque token should be checked remotely")
		}
		assertCleared(t, store)
		if s.IsAuthenticated() {
			t.Fatalf("session must stay anonymous")
		}
	})

	t.Run("cached fields kept when check omits them", func(t *testing.T) {
		token := signToken(t, time.Now().Add(time.Hour))
		cached := user
		cached.Location = "London"
		cached.FavoriteTeam = &domain.FootballTeam{ID: 57, Name: "Arsenal FC"}
		mock := &mockAuthBackend{user: domain.User{ID: "u1", Email: "fan@scoresight.io", FirstName: "Ada"}}
		store := seedStore(t, token, cached)
		s := NewSession(mock, store, nil)

		got, err := s.Restore(ctx)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if got.Location != "London" || got.FavoriteTeam == nil || got.FirstName != "Ada" {
			t.Fatalf("unexpected restored user %+v", got)
		}
		raw, err := store.Get(ctx, UserKey)
		if err != nil {
			t.Fatalf("read cached user: %v", err)
		}
		var persisted domain.User
		if err := json.Unmarshal([]byte(raw), &persisted); err != nil || persisted.FirstName != "Ada" {
			t.Fatalf("cached user not refreshed: %s", raw)
		}
	})

	t.Run("corrupt cached user cleared without backend call", func(t *testing.T) {
		mock := &mockAuthBackend{user: user}
		store := storage.NewMemoryStore()
		_ = store.Set(ctx, TokenKey, "opaque-token")
		_ = store.Set(ctx, UserKey, "{not json")
		s := NewSession(mock, store, nil)

		if _, err := s.Restore(ctx); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if mock.checkCalls != 0 {
			t.Fatalf("expected no backend call")
		}
		assertCleared(t, store)
	})

	t.Run("nothing stored", func(t *testing.T) {
		s := NewSession(&mockAuthBackend{}, storage.NewMemoryStore(), nil)
		if _, err := s.Restore(ctx); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestLoginMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: MsgLoginOK},
		{name: "wrong credentials", err: &backend.StatusError{Code: 401}, want: MsgWrongCredentials},
		{name: "server error", err: &backend.StatusError{Code: 500}, want: MsgLoginFailed},
		{name: "unsuccessful", err: backend.ErrUnsuccessful, want: MsgLoginFailed},
		{name: "network", err: errors.New("dial tcp: refused"), want: MsgNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			mock := &mockAuthBackend{user: domain.User{ID: "u1", Token: "tok"}, err: tt.err}
			s := NewSession(mock, store, nil)

			_, err := s.Login(context.Background(), " fan@scoresight.io ", "pw")
			if (err != nil) != (tt.err != nil) {
				t.Fatalf("unexpected err %v", err)
			}
			if s.Message() != tt.want {
				t.Fatalf("message = %q, want %q", s.Message(), tt.want)
			}
			if tt.err != nil {
				return
			}
			token, _ := store.Get(context.Background(), TokenKey)
			if token != "tok" {
				t.Fatalf("token not persisted: %q", token)
			}
			raw, _ := store.Get(context.Background(), UserKey)
			var cached domain.User
			if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.Email != "fan@scoresight.io" {
				t.Fatalf("user not persisted: %q", raw)
			}
		})
	}
}

func TestSignupMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: MsgSignupOK},
		{name: "already registered", err: &backend.StatusError{Code: 400}, want: MsgAlreadyRegistered},
		{name: "invalid", err: &backend.StatusError{Code: 422}, want: MsgInvalidSignup},
		{name: "other status", err: &backend.StatusError{Code: 503}, want: MsgSignupFailed},
		{name: "network", err: errors.New("timeout"), want: MsgNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuthBackend{user: domain.User{ID: "u2", Token: "tok"}, err: tt.err}
			s := NewSession(mock, nil, nil)
			_, _ = s.Signup(context.Background(), backend.SignupRequest{Email: "new@fan.io", Password: "pw", FirstName: "Ada"})
			if s.Message() != tt.want {
				t.Fatalf("message = %q, want %q", s.Message(), tt.want)
			}
			if s.IsAuthenticated() != (tt.err == nil) {
				t.Fatalf("unexpected auth state")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	store := storage.NewMemoryStore()
	s := NewSession(&mockAuthBackend{user: domain.User{ID: "u1", Token: "tok"}}, store, nil)
	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	s.Logout(context.Background())
	if s.IsAuthenticated() || s.Token() != "" {
		t.Fatalf("expected anonymous session")
	}
	if s.Message() != MsgLogout {
		t.Fatalf("unexpected message %q", s.Message())
	}
	assertCleared(t, store)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login", func(t *testing.T) {
		s := NewSession(&mockAuthBackend{}, nil, nil)
		name := "Gooner"
		if _, err := s.UpdateProfile(ctx, domain.ProfileUpdate{DisplayName: &name}); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if s.Message() != MsgLoginToProfile {
			t.Fatalf("unexpected message %q", s.Message())
		}
	})

	t.Run("merges and persists", func(t *testing.T) {
		store := storage.NewMemoryStore()
		mock := &mockAuthBackend{user: domain.User{ID: "u1", Token: "tok", FirstName: "Ada"}}
		s := NewSession(mock, store, nil)
		s.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
		if _, err := s.Login(ctx, "ada@fan.io", "pw"); err != nil {
			t.Fatalf("login: %v", err)
		}

		team := domain.FootballTeam{ID: 57, Name: "Arsenal FC", ShortName: "Arsenal"}
		got, err := s.SetFavoriteTeam(ctx, team)
		if err != nil {
			t.Fatalf("set favorite team: %v", err)
		}
		if mock.lastToken != "tok" || mock.lastUpdate.FavoriteTeam == nil {
			t.Fatalf("expected update sent with bearer token")
		}
		if got.FirstName != "Ada" || got.Token != "tok" || got.Email != "ada@fan.io" {
			t.Fatalf("local fields lost in merge: %+v", got)
		}
		if got.FavoriteTeam == nil || got.FavoriteTeam.ShortName != "Arsenal" {
			t.Fatalf("favorite team not applied: %+v", got.FavoriteTeam)
		}
		if got.UpdatedAt != "2024-06-01T10:00:00Z" {
			t.Fatalf("unexpected updatedAt %q", got.UpdatedAt)
		}
		if s.Message() != MsgProfileUpdated {
			t.Fatalf("unexpected message %q", s.Message())
		}
		raw, _ := store.Get(ctx, UserKey)
		var cached domain.User
		if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.FavoriteTeam == nil {
			t.Fatalf("updated user not persisted: %q", raw)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		mock := &mockAuthBackend{user: domain.User{ID: "u1", Token: "tok"}}
		s := NewSession(mock, nil, nil)
		if _, err := s.Login(ctx, "a@b.c", "pw"); err != nil {
			t.Fatalf("login: %v", err)
		}
		mock.err = &backend.StatusError{Code: 500}
		name := "X"
		if _, err := s.UpdateProfile(ctx, domain.ProfileUpdate{DisplayName: &name}); err == nil {
			t.Fatalf("expected error")
		}
		if s.Message() != MsgProfileFailed {
			t.Fatalf("unexpected message %q", s.Message())
		}
	})
}

func TestSubmitTestimonial(t *testing.T) {
	ctx := context.Background()
	mock := &mockAuthBackend{user: domain.User{ID: "u1", Token: "tok"}}
	s := NewSession(mock, nil, nil)

	if err := s.SubmitTestimonial(ctx, 5, "great"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if s.Message() != MsgLoginToTestimonial {
		t.Fatalf("unexpected message %q", s.Message())
	}

	if _, err := s.Login(ctx, "fan@scoresight.io", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.SubmitTestimonial(ctx, 0, "bad"); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := s.SubmitTestimonial(ctx, 4, "  Spot on predictions  "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got := mock.testimonial
	if got == nil || got.Rating != 4 || got.Comment != "Spot on predictions" {
		t.Fatalf("unexpected testimonial %+v", got)
	}
	if got.UserID != "u1" || got.UserName != "fan@scoresight.io" {
		t.Fatalf("expected email as user name fallback, got %+v", got)
	}
	if s.Message() != MsgTestimonialOK {
		t.Fatalf("unexpected message %q", s.Message())
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	if !tokenExpired(signToken(t, now.Add(-time.Second)), now) {
		t.Fatalf("expected expired")
	}
	if tokenExpired(signToken(t, now.Add(time.Hour)), now) {
		t.Fatalf("expected valid")
	}
	if tokenExpired("not-a-jwt", now) {
		t.Fatalf("opaque tokens are left to the backend")
	}
}
