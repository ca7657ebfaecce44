package repository

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thomurie/jobly/query/sqlgen"
)

var userCols = []string{"username", "first_name", "last_name", "email", "is_admin"}

func TestUserAuthenticate(t *testing.T) {
	c, mock := newMockClient(t)
	store := NewUserStore(c, bcrypt.MinCost)

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)

	query := `SELECT username, first_name, last_name, email, is_admin, password FROM users WHERE username = $1`
	cols := append(append([]string{}, userCols...), "password")

	mock.ExpectQuery(query).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "U1F", "U1L", "u1@email.com", false, string(hash)))
	user, err := store.Authenticate(context.Background(), "u1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Username)
	assert.Equal(t, "U1F", user.FirstName)

	mock.ExpectQuery(query).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "U1F", "U1L", "u1@email.com", false, string(hash)))
	_, err = store.Authenticate(context.Background(), "u1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(query).WithArgs("nope").WillReturnRows(sqlmock.NewRows(cols))
	_, err = store.Authenticate(context.Background(), "nope", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserRegister(t *testing.T) {
	newUser := NewUser{
		Username:  "new",
		Password:  "password",
		FirstName: "Test",
		LastName:  "Tester",
		Email:     "test@test.com",
	}

	t.Run("works", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("new").
			WillReturnRows(sqlmock.NewRows([]string{"username"}))
		mock.ExpectQuery(`INSERT INTO users (username, password, first_name, last_name, email, is_admin) VALUES ($1, $2, $3, $4, $5, $6) RETURNING username, first_name, last_name, email, is_admin`).
			WithArgs("new", sqlmock.AnyArg(), "Test", "Tester", "test@test.com", false).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("new", "Test", "Tester", "test@test.com", false))

		user, err := store.Register(context.Background(), newUser)
		require.NoError(t, err)
		assert.Equal(t, "new", user.Username)
		assert.False(t, user.IsAdmin)
	})

	t.Run("duplicate username", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		hashed := 0
		store.generate = func(password []byte, cost int) ([]byte, error) {
			hashed++
			return bcrypt.GenerateFromPassword(password, cost)
		}

		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("new").
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("new"))

		_, err := store.Register(context.Background(), newUser)
		require.ErrorIs(t, err, ErrBadRequest)
		assert.Contains(t, err.Error(), "duplicate username")
		assert.Zero(t, hashed, "password hashed for a taken username")
	})

	t.Run("duplicate detected by constraint", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("new").
			WillReturnRows(sqlmock.NewRows([]string{"username"}))
		mock.ExpectQuery(`INSERT INTO users (username, password, first_name, last_name, email, is_admin) VALUES ($1, $2, $3, $4, $5, $6) RETURNING username, first_name, last_name, email, is_admin`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_pkey"})

		_, err := store.Register(context.Background(), newUser)
		require.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("invalid data", func(t *testing.T) {
		c, _ := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		bad := newUser
		bad.Email = "not-an-email"
		bad.Password = "pw"
		_, err := store.Register(context.Background(), bad)
		require.ErrorIs(t, err, ErrBadRequest)
		var bre *BadRequestError
		require.ErrorAs(t, err, &bre)
		assert.Len(t, bre.Messages, 2)
	})
}

func TestUserFindAll(t *testing.T) {
	c, mock := newMockClient(t)
	store := NewUserStore(c, bcrypt.MinCost)

	mock.ExpectQuery(`SELECT username, first_name, last_name, email, is_admin FROM users ORDER BY username`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "U1F", "U1L", "u1@email.com", false).
			AddRow("u2", "U2F", "U2L", "u2@email.com", true))

	users, err := store.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[1].IsAdmin)
}

func TestUserGet(t *testing.T) {
	c, mock := newMockClient(t)
	store := NewUserStore(c, bcrypt.MinCost)

	mock.ExpectQuery(`SELECT username, first_name, last_name, email, is_admin FROM users WHERE username = $1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "U1F", "U1L", "u1@email.com", false))
	mock.ExpectQuery(`SELECT job_id FROM applications WHERE username = $1 ORDER BY job_id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(1).AddRow(3))

	user, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, user.Jobs)

	mock.ExpectQuery(`SELECT username, first_name, last_name, email, is_admin FROM users WHERE username = $1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(userCols))
	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdate(t *testing.T) {
	t.Run("aliases and trailing username", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`UPDATE users SET "last_name"=$1, "first_name"=$2, "email"=$3 WHERE username = $4 RETURNING username, first_name, last_name, email, is_admin`).
			WithArgs("NewL", "NewF", "new@email.com", "u1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "NewF", "NewL", "new@email.com", false))

		user, err := store.Update(context.Background(), "u1", sqlgen.Fields{
			{Name: "lastName", Value: "NewL"},
			{Name: "firstName", Value: "NewF"},
			{Name: "email", Value: "new@email.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, "NewF", user.FirstName)
	})

	t.Run("password is hashed", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		var stored string
		mock.ExpectQuery(`UPDATE users SET "password"=$1 WHERE username = $2 RETURNING username, first_name, last_name, email, is_admin`).
			WithArgs(hashArg{plain: "new-password", stored: &stored}, "u1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "U1F", "U1L", "u1@email.com", false))

		_, err := store.Update(context.Background(), "u1", sqlgen.Fields{{Name: "password", Value: "new-password"}})
		require.NoError(t, err)
		assert.NotEqual(t, "new-password", stored)
	})

	t.Run("not found", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`UPDATE users SET "first_name"=$1 WHERE username = $2 RETURNING username, first_name, last_name, email, is_admin`).
			WithArgs("Nope", "nope").
			WillReturnRows(sqlmock.NewRows(userCols))

		_, err := store.Update(context.Background(), "nope", sqlgen.Fields{{Name: "firstName", Value: "Nope"}})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("username and admin flag cannot be changed", func(t *testing.T) {
		c, _ := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		_, err := store.Update(context.Background(), "u1", sqlgen.Fields{
			{Name: "username", Value: "u9"},
			{Name: "isAdmin", Value: true},
		})
		require.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestUserRemove(t *testing.T) {
	c, mock := newMockClient(t)
	store := NewUserStore(c, bcrypt.MinCost)

	mock.ExpectQuery(`DELETE FROM users WHERE username = $1 RETURNING username`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("u1"))
	require.NoError(t, store.Remove(context.Background(), "u1"))

	mock.ExpectQuery(`DELETE FROM users WHERE username = $1 RETURNING username`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))
	require.ErrorIs(t, store.Remove(context.Background(), "nope"), ErrNotFound)
}

func TestUserApply(t *testing.T) {
	t.Run("works", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT id FROM jobs WHERE id = $1`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("u1"))
		mock.ExpectExec(`INSERT INTO applications (job_id, username) VALUES ($1, $2)`).
			WithArgs(int64(1), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Apply(context.Background(), "u1", 1))
	})

	t.Run("unknown job", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT id FROM jobs WHERE id = $1`).WithArgs(int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := store.Apply(context.Background(), "u1", 0)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "job")
	})

	t.Run("unknown user", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT id FROM jobs WHERE id = $1`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"username"}))

		err := store.Apply(context.Background(), "nope", 1)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "user")
	})

	t.Run("already applied", func(t *testing.T) {
		c, mock := newMockClient(t)
		store := NewUserStore(c, bcrypt.MinCost)

		mock.ExpectQuery(`SELECT id FROM jobs WHERE id = $1`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`SELECT username FROM users WHERE username = $1`).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("u1"))
		mock.ExpectExec(`INSERT INTO applications (job_id, username) VALUES ($1, $2)`).
			WithArgs(int64(1), "u1").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "applications_pkey"})

		err := store.Apply(context.Background(), "u1", 1)
		require.ErrorIs(t, err, ErrBadRequest)
		assert.Contains(t, err.Error(), "already applied")
	})
}

// hashArg matches a bcrypt hash of plain and records it.
type hashArg struct {
	plain  string
	stored *string
}

func (h hashArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	*h.stored = s
	return bcrypt.CompareHashAndPassword([]byte(s), []byte(h.plain)) == nil
}
