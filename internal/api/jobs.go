package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/thomurie/jobly/internal/repository"
	"github.com/thomurie/jobly/query/sqlgen"
)

func jobID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, repository.NewNotFoundError("job", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return repository.NewBadRequestError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// ListJobs serves GET /jobs. Without query parameters every job is returned;
// otherwise the parameters are compiled into a filter.
func (s *APIServer) ListJobs(w http.ResponseWriter, r *http.Request) {
	var (
		jobs []repository.Job
		err  error
	)

	query := r.URL.Query()
	if len(query) == 0 {
		jobs, err = s.deps.Jobs.FindAll(r.Context())
	} else {
		var filter sqlgen.JobFilter
		filter, err = sqlgen.ParseJobFilter(query)
		if err == nil {
			jobs, err = s.deps.Jobs.Find(r.Context(), filter)
		}
	}
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}
	if jobs == nil {
		jobs = []repository.Job{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *APIServer) CreateJob(w http.ResponseWriter, r *http.Request) {
	var data repository.NewJob
	if err := decodeBody(r, &data); err != nil {
		RespondError(w, s.logger, err)
		return
	}

	job, err := s.deps.Jobs.Create(r.Context(), data)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"job": job})
}

func (s *APIServer) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	job, err := s.deps.Jobs.Get(r.Context(), id)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"job": job})
}

// UpdateJob serves PATCH /jobs/{id}. The body's keys are applied in the order
// they appear.
func (s *APIServer) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	fields, err := sqlgen.DecodeFields(r.Body)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	job, err := s.deps.Jobs.Update(r.Context(), id, fields)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *APIServer) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		RespondError(w, s.logger, err)
		return
	}

	if err := s.deps.Jobs.Remove(r.Context(), id); err != nil {
		RespondError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
