// Package ops implements the tool operations shared by the MCP server
// and the CLI: health probing, single-package source retrieval, project
// aggregation, and run-catalog listing.
package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/PassKeyRa/suisource-mcp/internal/catalog"
	"github.com/PassKeyRa/suisource-mcp/internal/config"
	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/project"
	"github.com/PassKeyRa/suisource-mcp/internal/source"
)

// Server identity reported by health_check.
const (
	ServerName    = "suisource-mcp"
	ServerVersion = "0.2.0"
)

// SourceProvider produces decompiled modules for one package.
type SourceProvider interface {
	Modules(ctx context.Context, packageID string) ([]source.ModuleSource, error)
}

// ProjectBuilder builds the aggregate view of an upgrade family.
type ProjectBuilder interface {
	Build(ctx context.Context, packageID string) (*project.View, error)
}

// Prober reports whether the decompiler binary is usable.
type Prober interface {
	Available(ctx context.Context) error
}

// Env bundles the collaborators an operation needs. DB may be nil, in
// which case run recording and listing are disabled.
type Env struct {
	Sources  SourceProvider
	Projects ProjectBuilder
	Prober   Prober
	DB       *sql.DB
	Cfg      *config.Config
}

// maxPackageIDHexLen is the address width of a Sui object id: 32 bytes.
const maxPackageIDHexLen = 64

// ValidatePackageID normalizes a package id to lowercase and checks
// that it is a 0x-prefixed hex string of at most 32 bytes.
func ValidatePackageID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if id == "" {
		return "", errors.NewInvalidRequest("package_id must not be empty")
	}
	if !strings.HasPrefix(id, "0x") {
		return "", errors.NewInvalidRequest("package_id must start with 0x")
	}
	digits := id[2:]
	if digits == "" || len(digits) > maxPackageIDHexLen {
		return "", errors.NewInvalidRequest("package_id must be 1 to 64 hex digits after 0x")
	}
	for _, c := range digits {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", errors.NewInvalidRequest("package_id must be hexadecimal")
		}
	}
	return id, nil
}

// recordRun appends a catalog row. Failures are logged, never surfaced:
// run history is an accessory to the request, not part of it.
func recordRun(env *Env, tool, packageID string, packages, modules, failed int, elapsed time.Duration) {
	if env.DB == nil {
		return
	}
	_, err := catalog.Record(env.DB, catalog.Run{
		Tool:       tool,
		PackageID:  packageID,
		Packages:   packages,
		Modules:    modules,
		Failed:     failed,
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		slog.Warn("run catalog write failed", "tool", tool, "error", err)
	}
}
