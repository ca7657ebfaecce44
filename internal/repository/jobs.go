// Package repository contains jobly's entity accessors. Each accessor builds
// its statement around fragments compiled by query/sqlgen and executes it
// through the record-store gateway.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thomurie/jobly/internal/debug"
	"github.com/thomurie/jobly/query/sqlgen"
	"github.com/thomurie/jobly/runtime/client"
)

const jobColumns = "id, title, salary, equity, company_handle"

// jobAliases maps job fields to their columns. Every updatable job field is
// stored under its own name.
var jobAliases = sqlgen.Aliases{
	"title":  "title",
	"salary": "salary",
	"equity": "equity",
}

// Job is a row of the jobs table.
type Job struct {
	ID            int     `db:"id" json:"id"`
	Title         string  `db:"title" json:"title"`
	Salary        *int    `db:"salary" json:"salary"`
	Equity        *string `db:"equity" json:"equity"`
	CompanyHandle string  `db:"company_handle" json:"companyHandle"`
}

// NewJob is the payload for creating a job.
type NewJob struct {
	Title         string       `json:"title"`
	Salary        *int         `json:"salary"`
	Equity        *json.Number `json:"equity"`
	CompanyHandle string       `json:"companyHandle"`
}

// JobStore reads and writes jobs.
type JobStore struct {
	db client.Querier
}

// NewJobStore creates a JobStore over the given gateway.
func NewJobStore(db client.Querier) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a job and returns the stored row.
func (s *JobStore) Create(ctx context.Context, data NewJob) (*Job, error) {
	var p problems
	if _, err := asString("title", data.Title, 1, 0); err != nil {
		p.addf("%v", err)
	}
	var salary any
	if data.Salary != nil {
		v, err := asSalary("salary", *data.Salary)
		if err != nil {
			p.addf("%v", err)
		}
		salary = v
	}
	var equity any
	if data.Equity != nil {
		v, err := asEquity("equity", *data.Equity)
		if err != nil {
			p.addf("%v", err)
		}
		equity = v
	}
	if _, err := asString("companyHandle", data.CompanyHandle, 1, 25); err != nil {
		p.addf("%v", err)
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	var job Job
	err := s.db.Get(ctx, &job,
		`INSERT INTO jobs (title, salary, equity, company_handle)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+jobColumns,
		data.Title, salary, equity, data.CompanyHandle,
	)
	if err != nil {
		var ce *client.ConstraintError
		if errors.As(err, &ce) {
			return nil, rejectedJob(ce)
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &job, nil
}

// FindAll returns every job ordered by company handle.
func (s *JobStore) FindAll(ctx context.Context) ([]Job, error) {
	jobs := []Job{}
	err := s.db.Query(ctx, &jobs,
		`SELECT `+jobColumns+`
		 FROM jobs
		 ORDER BY company_handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Find returns the jobs matching filter ordered by id. A filter without
// criteria returns every job.
func (s *JobStore) Find(ctx context.Context, filter sqlgen.JobFilter) ([]Job, error) {
	where, err := sqlgen.CompileFilter(filter)
	if err != nil {
		return nil, err
	}

	jobs := []Job{}
	err = s.db.Query(ctx, &jobs,
		`SELECT `+jobColumns+`
		 FROM jobs`+where.Where()+`
		 ORDER BY id`,
		where.Values...)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	return jobs, nil
}

// Get returns the job with the given id.
func (s *JobStore) Get(ctx context.Context, id int) (*Job, error) {
	var job Job
	err := s.db.Get(ctx, &job,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("job", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// Update applies a partial update to the job with the given id. Only title,
// salary and equity may change; fields are applied in the order given.
func (s *JobStore) Update(ctx context.Context, id int, fields sqlgen.Fields) (*Job, error) {
	fields, err := normalizeJobFields(fields)
	if err != nil {
		return nil, err
	}

	set, err := sqlgen.CompileSet(fields, jobAliases)
	if err != nil {
		return nil, err
	}
	debug.With("job", id).Debug("updating job", "fields", fields.Names())

	var job Job
	err = s.db.Get(ctx, &job,
		`UPDATE jobs
		 SET `+set.Text+`
		 WHERE id = `+sqlgen.Placeholder(set.Next())+`
		 RETURNING `+jobColumns,
		set.Args(id)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("job", id)
	}
	if err != nil {
		var ce *client.ConstraintError
		if errors.As(err, &ce) {
			return nil, rejectedJob(ce)
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return &job, nil
}

// Remove deletes the job with the given id.
func (s *JobStore) Remove(ctx context.Context, id int) error {
	var deleted int
	err := s.db.Get(ctx, &deleted,
		`DELETE
		 FROM jobs
		 WHERE id = $1
		 RETURNING id`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("job", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// normalizeJobFields validates an update payload and converts its values to
// the types bound for each column, keeping the caller's order.
func normalizeJobFields(fields sqlgen.Fields) (sqlgen.Fields, error) {
	var p problems
	out := make(sqlgen.Fields, 0, len(fields))

	for _, f := range fields {
		var v any
		var err error
		switch f.Name {
		case "title":
			v, err = asString("title", f.Value, 1, 0)
		case "salary":
			v, err = asSalary("salary", f.Value)
		case "equity":
			v, err = asEquity("equity", f.Value)
		case "id", "companyHandle", "company_handle":
			err = fmt.Errorf("%s cannot be changed", f.Name)
		default:
			err = fmt.Errorf("%s is not an updatable job field", f.Name)
		}
		if err != nil {
			p.addf("%v", err)
			continue
		}
		out = append(out, sqlgen.Field{Name: f.Name, Value: v})
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rejectedJob logs a constraint violation and returns a client message that
// does not echo stored values.
func rejectedJob(ce *client.ConstraintError) error {
	debug.With("constraint", ce.Constraint, "code", ce.Code).Warn("job data rejected", "detail", ce.Detail)
	if ce.IsForeignKey() {
		return NewBadRequestError("companyHandle does not match a company")
	}
	return NewBadRequestError("invalid job data")
}
