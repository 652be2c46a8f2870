package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/photoflow/service/internal/response"
	"github.com/photoflow/service/internal/user"
)

// emailRegex is a permissive sanity check, not full RFC 5322 validation.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"    example:"user@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type registerData struct {
	ID        string `json:"id"        example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	Email     string `json:"email"     example:"user@example.com"`
	CreatedAt string `json:"createdAt" example:"2026-02-27T14:48:34Z"`
}

type loginData struct {
	AccessToken string `json:"access_token" example:"eyJhbGci..."`
	TokenType   string `json:"token_type"   example:"bearer"`
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create a new account with email and password.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	response.Envelope{data=registerData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		response.BadRequest(w, "invalid email format")
		return
	}
	if len(req.Password) < minPasswordLength {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, user.ErrAlreadyExists) {
		response.Conflict(w, "email already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, u)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify email/password and issue a JWT. Accepts form-encoded username/password (OAuth2 password-flow style).
//	@Tags			auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Email address"
//	@Param			password	formData	string	true	"Password"
//	@Success		200			{object}	response.Envelope{data=loginData}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/auth/jwt/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	// The web client posts a login form with "username" carrying the email.
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	token, _, err := h.svc.Login(r.Context(), email, password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, loginData{AccessToken: token, TokenType: "bearer"})
}
