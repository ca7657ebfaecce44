package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thomurie/jobly/internal/repository"
	"github.com/thomurie/jobly/query/sqlgen"
)

// CreateUser serves POST /users. Unlike registration, an admin may create
// other admins.
func (s *APIServer) CreateUser(w http.ResponseWriter, r *http.Request) {
	var data repository.NewUser
	if err := decodeBody(r, &data); err != nil {
		RespondError(w, s.logger, err)
		return
	}

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

	WriteJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

func (s *APIServer) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Users.FindAll(r.Context())
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}
	if users == nil {
		users = []repository.User{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *APIServer) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Users.Get(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *APIServer) UpdateUser(w http.ResponseWriter, r *http.Request) {
	fields, err := sqlgen.DecodeFields(r.Body)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	user, err := s.deps.Users.Update(r.Context(), mux.Vars(r)["username"], fields)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *APIServer) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := s.deps.Users.Remove(r.Context(), username); err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deleted": username})
}

func (s *APIServer) ApplyToJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	if err := s.deps.Users.Apply(r.Context(), mux.Vars(r)["username"], id); err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"applied": id})
}
