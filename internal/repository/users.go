package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/thomurie/jobly/query/sqlgen"
	"github.com/thomurie/jobly/runtime/client"
)

const userColumns = "username, first_name, last_name, email, is_admin"

// userAliases maps user fields to their columns.
var userAliases = sqlgen.Aliases{
	"firstName": "first_name",
	"lastName":  "last_name",
}

// User is a row of the users table without its password hash.
type User struct {
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	IsAdmin   bool   `db:"is_admin" json:"isAdmin"`
	Jobs      []int  `db:"-" json:"jobs,omitempty"`
}

// NewUser is the payload for registering a user.
type NewUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

type userWithPassword struct {
	User
	Password string `db:"password"`
}

// UserStore reads and writes users and their job applications.
type UserStore struct {
	db         client.Querier
	bcryptCost int
	generate   func(password []byte, cost int) ([]byte, error)
}

// NewUserStore creates a UserStore. bcryptCost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewUserStore(db client.Querier, bcryptCost int) *UserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserStore{db: db, bcryptCost: bcryptCost, generate: bcrypt.GenerateFromPassword}
}

// Authenticate returns the user if the password matches, otherwise
// ErrInvalidCredentials.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var row userWithPassword
	err := s.db.Get(ctx, &row,
		`SELECT `+userColumns+`, password
		 FROM users
		 WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &row.User, nil
}

// Register creates a user with a hashed password.
func (s *UserStore) Register(ctx context.Context, data NewUser) (*User, error) {
	var p problems
	if _, err := asString("username", data.Username, 1, 25); err != nil {
		p.addf("%v", err)
	}
	if _, err := asString("password", data.Password, 5, 20); err != nil {
		p.addf("%v", err)
	}
	if _, err := asString("firstName", data.FirstName, 1, 30); err != nil {
		p.addf("%v", err)
	}
	if _, err := asString("lastName", data.LastName, 1, 30); err != nil {
		p.addf("%v", err)
	}
	if _, err := asEmail("email", data.Email); err != nil {
		p.addf("%v", err)
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	var existing []string
	err := s.db.Query(ctx, &existing,
		`SELECT username
		 FROM users
		 WHERE username = $1`, data.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if len(existing) > 0 {
		return nil, NewBadRequestError(fmt.Sprintf("duplicate username: %s", data.Username))
	}

	hash, err := s.hash(data.Password)
	if err != nil {
		return nil, err
	}

	// A concurrent registration can still win the race; the primary key
	// reports it as a unique violation.
	var user User
	err = s.db.Get(ctx, &user,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		data.Username, hash, data.FirstName, data.LastName, data.Email, data.IsAdmin)
	if err != nil {
		var ce *client.ConstraintError
		if errors.As(err, &ce) && ce.IsUnique() {
			return nil, NewBadRequestError(fmt.Sprintf("duplicate username: %s", data.Username))
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return &user, nil
}

// FindAll returns every user ordered by username.
func (s *UserStore) FindAll(ctx context.Context) ([]User, error) {
	users := []User{}
	err := s.db.Query(ctx, &users,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get returns the user and the ids of the jobs they applied to.
func (s *UserStore) Get(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.Get(ctx, &user,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	jobs := []int{}
	err = s.db.Query(ctx, &jobs,
		`SELECT job_id
		 FROM applications
		 WHERE username = $1
		 ORDER BY job_id`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	user.Jobs = jobs
	return &user, nil
}

// Update applies a partial update to a user. A password is re-hashed before
// it is stored.
func (s *UserStore) Update(ctx context.Context, username string, fields sqlgen.Fields) (*User, error) {
	fields, err := normalizeUserFields(fields)
	if err != nil {
		return nil, err
	}

	if pw, ok := fields.Lookup("password"); ok {
		hash, err := s.hash(pw.(string))
		if err != nil {
			return nil, err
		}
		fields = fields.Replace("password", hash)
	}

	set, err := sqlgen.CompileSet(fields, userAliases)
	if err != nil {
		return nil, err
	}

	var user User
	err = s.db.Get(ctx, &user,
		`UPDATE users
		 SET `+set.Text+`
		 WHERE username = `+sqlgen.Placeholder(set.Next())+`
		 RETURNING `+userColumns,
		set.Args(username)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// Remove deletes a user.
func (s *UserStore) Remove(ctx context.Context, username string) error {
	var deleted string
	err := s.db.Get(ctx, &deleted,
		`DELETE
		 FROM users
		 WHERE username = $1
		 RETURNING username`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("user", username)
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Apply records an application by username to the job.
func (s *UserStore) Apply(ctx context.Context, username string, jobID int) error {
	var id int
	err := s.db.Get(ctx, &id,
		`SELECT id
		 FROM jobs
		 WHERE id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("job", jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up job: %w", err)
	}

	var name string
	err = s.db.Get(ctx, &name,
		`SELECT username
		 FROM users
		 WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("user", username)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO applications (job_id, username)
		 VALUES ($1, $2)`, jobID, username)
	if err != nil {
		var ce *client.ConstraintError
		if errors.As(err, &ce) && ce.IsUnique() {
			return NewBadRequestError(fmt.Sprintf("%s already applied to job %d", username, jobID))
		}
		return fmt.Errorf("failed to apply: %w", err)
	}
	return nil
}

func (s *UserStore) hash(password string) (string, error) {
	b, err := s.generate([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// normalizeUserFields validates a user update payload, keeping the caller's
// order.
func normalizeUserFields(fields sqlgen.Fields) (sqlgen.Fields, error) {
	var p problems
	out := make(sqlgen.Fields, 0, len(fields))

	for _, f := range fields {
		var v any
		var err error
		switch f.Name {
		case "firstName", "lastName":
			v, err = asString(f.Name, f.Value, 1, 30)
		case "password":
			v, err = asString("password", f.Value, 5, 20)
		case "email":
			v, err = asEmail("email", f.Value)
		case "username":
			err = fmt.Errorf("username cannot be changed")
		default:
			err = fmt.Errorf("%s is not an updatable user field", f.Name)
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
