package backend

import (
	"context"
	"fmt"
	"net/http"

	"scoresight/internal/domain"
)

// SignupRequest son los datos del formulario de registro.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type checkResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (r userResponse) result() (domain.User, error) {
	if !r.Success || r.User == nil {
		return domain.User{}, ErrUnsuccessful
	}
	return *r.User, nil
}

// Login autentica con email y password.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (domain.User, error) {
	var ur userResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password}, &ur); err != nil {
		return domain.User{}, err
	}
	return ur.result()
}

// Signup crea la cuenta y devuelve el usuario con su token.
func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (domain.User, error) {
	var ur userResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", "", req, &ur); err != nil {
		return domain.User{}, err
	}
	return ur.result()
}

// CheckAuth valida el token contra el backend.
func (c *HTTPClient) CheckAuth(ctx context.Context, token string) (domain.User, error) {
	var cr checkResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/check", token, nil, &cr); err != nil {
		return domain.User{}, err
	}
	if !cr.Authenticated || cr.User == nil {
		return domain.User{}, ErrUnsuccessful
	}
	return *cr.User, nil
}

// UpdateProfile envia solo los campos modificados del perfil.
func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (domain.User, error) {
	var ur userResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/profile", token, update, &ur); err != nil {
		return domain.User{}, err
	}
	return ur.result()
}

// SubmitTestimonial publica una valoracion del usuario.
func (c *HTTPClient) SubmitTestimonial(ctx context.Context, token string, t domain.Testimonial) error {
	var sr successResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/testimonials", token, t, &sr); err != nil {
		return err
	}
	if !sr.Success {
		return fmt.Errorf("submit testimonial: %w", ErrUnsuccessful)
	}
	return nil
}
