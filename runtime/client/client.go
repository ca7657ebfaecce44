// Package client provides the record-store gateway used by jobly's entity
// accessors.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DriverName is the database/sql driver jobly runs on.
const DriverName = "postgres"

// Querier is the subset of the gateway the entity accessors depend on.
type Querier interface {
	Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Options configures the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Client executes parameterized statements against PostgreSQL
type Client struct {
	db          *sqlx.DB
	middlewares []Middleware
}

var _ Querier = (*Client)(nil)

// Open creates a new client for the given connection string
func Open(connectionString string, opts Options) (*Client, error) {
	db, err := sqlx.Open(DriverName, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return New(db), nil
}

// NewFromDB creates a new client from a database connection
func NewFromDB(db *sql.DB) *Client {
	return New(sqlx.NewDb(db, DriverName))
}

// New creates a new client around an sqlx handle
func New(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// Use adds a middleware to the chain
func (c *Client) Use(middleware Middleware) {
	c.middlewares = append(c.middlewares, middleware)
}

// Connect verifies the database connection
func (c *Client) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Query executes a statement and scans every row into dest, which must be a
// pointer to a slice.
func (c *Client) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return executeWithMiddleware(ctx, c.middlewares, query, args, func() error {
		return translateError(c.db.SelectContext(ctx, dest, query, args...))
	})
}

// Get executes a statement and scans the single resulting row into dest. It
// returns sql.ErrNoRows if the statement produced no rows.
func (c *Client) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return executeWithMiddleware(ctx, c.middlewares, query, args, func() error {
		return translateError(c.db.GetContext(ctx, dest, query, args...))
	})
}

// Exec executes a statement that returns no rows
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	var res sql.Result
	err := executeWithMiddleware(ctx, c.middlewares, query, args, func() error {
		var err error
		res, err = c.db.ExecContext(ctx, query, args...)
		return translateError(err)
	})
	return res, err
}
