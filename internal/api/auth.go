package api

import (
	"net/http"

	"github.com/thomurie/jobly/internal/repository"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token serves POST /auth/token, exchanging credentials for a token.
func (s *APIServer) Token(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeBody(r, &creds); err != nil {
		RespondError(w, s.logger, err)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		RespondError(w, s.logger, repository.NewBadRequestError("username and password are required"))
		return
	}

	user, err := s.deps.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	token, err := s.deps.Tokens.Create(user.Username, user.IsAdmin)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"token": token})
}

// Register serves POST /auth/register. Self-registered users are never
// admins.
func (s *APIServer) Register(w http.ResponseWriter, r *http.Request) {
	var data repository.NewUser
	if err := decodeBody(r, &data); err != nil {
		RespondError(w, s.logger, err)
		return
	}
	data.IsAdmin = false

	user, err := s.deps.Users.Register(r.Context(), data)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	token, err := s.deps.Tokens.Create(user.Username, user.IsAdmin)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"token": token})
}
