// Package project aggregates a package's full upgrade family into one
// merged view: every related package version, its decompiled modules,
// and when each was last changed.
package project

import (
	"context"
	"sort"
	"sync"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/history"
	"github.com/PassKeyRa/suisource-mcp/internal/lineage"
	"github.com/PassKeyRa/suisource-mcp/internal/source"
)

// View is the aggregate result for one upgrade family.
type View struct {
	PackageID  string    `json:"package_id"`
	OriginalID string    `json:"original_id"`
	Packages   []Package `json:"packages"`
}

// Package is one member of the family. Error carries a package-level
// fetch failure; HistoryError a failed change lookup. Both are inline
// data, not request failures.
type Package struct {
	PackageID     string                `json:"package_id"`
	Version       uint64                `json:"version"`
	Modules       []source.ModuleSource `json:"modules,omitempty"`
	LastChangedMs *int64                `json:"last_changed_ms,omitempty"`
	Error         string                `json:"error,omitempty"`
	HistoryError  string                `json:"history_error,omitempty"`
}

// LineageResolver resolves upgrade families.
type LineageResolver interface {
	Resolve(ctx context.Context, packageID string) (*lineage.Lineage, error)
}

// SourceProvider produces decompiled modules for one package.
type SourceProvider interface {
	Modules(ctx context.Context, packageID string) ([]source.ModuleSource, error)
}

// ChangeTracker looks up last-changed timestamps. Enabled() false means
// the lookup is skipped entirely and every record stays absent.
type ChangeTracker interface {
	Enabled() bool
	LastChanged(ctx context.Context, packageID string) (*history.ChangeRecord, error)
}

const defaultConcurrency = 4

// Aggregator orchestrates lineage resolution, per-package source
// retrieval, and change history into a single sorted view.
type Aggregator struct {
	lineage     LineageResolver
	sources     SourceProvider
	history     ChangeTracker
	concurrency int
}

// New wires an Aggregator. history may be nil (feature disabled).
func New(lin LineageResolver, sources SourceProvider, hist ChangeTracker, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Aggregator{lineage: lin, sources: sources, history: hist, concurrency: concurrency}
}

// Build resolves the family of packageID and fills in each member
// independently under bounded concurrency. Per-package failures are
// recorded inline; the whole call fails only when lineage resolution
// fails, the context is cancelled, or every package failed every
// sub-step. Cancellation is all-or-nothing: no partial view.
func (a *Aggregator) Build(ctx context.Context, packageID string) (*View, error) {
	lin, err := a.lineage.Resolve(ctx, packageID)
	if err != nil {
		return nil, err
	}

	results := make([]Package, len(lin.Packages))

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for i, entry := range lin.Packages {
		wg.Add(1)
		go func(i int, entry lineage.Entry) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			results[i] = a.one(ctx, entry)
		}(i, entry)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.totalFailure(results) {
		return nil, errors.NewUpstreamUnavailable("every package in the lineage failed to resolve")
	}

	sortPackages(results)
	return &View{
		PackageID:  packageID,
		OriginalID: lin.OriginalID,
		Packages:   results,
	}, nil
}

// one runs both sub-steps for a single package. Each failure lands in
// the package entry rather than aborting siblings.
func (a *Aggregator) one(ctx context.Context, entry lineage.Entry) Package {
	pkg := Package{PackageID: entry.PackageID, Version: entry.Version}

	modules, err := a.sources.Modules(ctx, entry.PackageID)
	if err != nil {
		pkg.Error = err.Error()
	} else {
		pkg.Modules = modules
	}

	if a.history != nil && a.history.Enabled() {
		record, err := a.history.LastChanged(ctx, entry.PackageID)
		switch {
		case err != nil:
			pkg.HistoryError = err.Error()
		case record != nil:
			ts := record.TimestampMs
			pkg.LastChangedMs = &ts
		}
	}

	return pkg
}

// totalFailure reports whether nothing at all succeeded: every package's
// source fetch failed and no change record came back either.
func (a *Aggregator) totalFailure(results []Package) bool {
	if len(results) == 0 {
		return false
	}
	for _, pkg := range results {
		if pkg.Error == "" || pkg.LastChangedMs != nil {
			return false
		}
	}
	return true
}

// sortPackages orders descending by last-changed timestamp; packages
// without a record go last, keeping ascending lineage order among
// themselves (the input is already in lineage order, so a stable sort
// preserves it).
func sortPackages(pkgs []Package) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		a, b := pkgs[i], pkgs[j]
		switch {
		case a.LastChangedMs != nil && b.LastChangedMs != nil:
			return *a.LastChangedMs > *b.LastChangedMs
		case a.LastChangedMs != nil:
			return true
		default:
			return false
		}
	})
}
