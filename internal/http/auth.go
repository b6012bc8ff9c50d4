package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/identity"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/logging"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateRequest(w, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			s.respondError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
		case errors.Is(err, repository.ErrEmailTaken):
			s.respondError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
		case errors.Is(err, identity.ErrPasswordTooLong):
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		default:
			logging.Ctx(r.Context(), s.logger).Error().Err(err).Msg("register failed")
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		}
		return
	}

	s.respondJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateRequest(w, &req) {
		return
	}

	session, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		logging.Ctx(r.Context(), s.logger).Error().Err(err).Msg("login failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	s.respondJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		User: userResponse{
			ID:       session.User.ID,
			Username: session.User.Username,
			Email:    session.User.Email,
		},
	})
}
