package client

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-version"
)

// MinServerVersion is the oldest PostgreSQL release jobly is tested against.
const MinServerVersion = "12.0"

// ServerVersion returns the PostgreSQL server version
func (c *Client) ServerVersion(ctx context.Context) (*version.Version, error) {
	var raw string
	if err := c.Get(ctx, &raw, "SHOW server_version"); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}
	return parseServerVersion(raw)
}

// CheckServerVersion fails if the server is older than MinServerVersion.
func (c *Client) CheckServerVersion(ctx context.Context) (*version.Version, error) {
	current, err := c.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	minimum := version.Must(version.NewVersion(MinServerVersion))
	if current.LessThan(minimum) {
		return current, fmt.Errorf("PostgreSQL %s is not supported, need %s or newer", current, minimum)
	}
	return current, nil
}

// parseServerVersion parses strings such as "16.2" or
// "15.4 (Debian 15.4-1.pgdg120+1)".
func parseServerVersion(raw string) (*version.Version, error) {
	for i, r := range raw {
		if r == ' ' {
			raw = raw[:i]
			break
		}
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %w", err)
	}
	return v, nil
}
