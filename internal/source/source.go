// Package source produces decompiled module source for one package,
// consulting the on-disk cache before invoking the decompiler.
package source

import (
	"context"

	"github.com/PassKeyRa/suisource-mcp/internal/bytecode"
	"github.com/PassKeyRa/suisource-mcp/internal/cache"
)

// ModuleSource is one module's decompilation outcome: source text or an
// error marker, never both.
type ModuleSource struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Fetcher retrieves a package's module bytecode.
type Fetcher interface {
	FetchModules(ctx context.Context, packageID string) ([]bytecode.Module, error)
}

// Decompiler maps one module's bytecode to source text.
type Decompiler interface {
	Decompile(ctx context.Context, moduleName string, code []byte) (string, error)
}

// Provider runs the fetch → cache lookup → decompile → cache store
// pipeline for one package at a time.
type Provider struct {
	fetcher    Fetcher
	decompiler Decompiler
	store      *cache.Store
}

// NewProvider wires the pipeline.
func NewProvider(fetcher Fetcher, decompiler Decompiler, store *cache.Store) *Provider {
	return &Provider{fetcher: fetcher, decompiler: decompiler, store: store}
}

// Store exposes the backing cache, used by callers that report the
// on-disk location of results.
func (p *Provider) Store() *cache.Store {
	return p.store
}

// Modules returns every module of the package with source text or a
// per-module error marker. Only the bytecode fetch itself can fail the
// call; decompilation failures are recorded inline so sibling modules
// still complete.
func (p *Provider) Modules(ctx context.Context, packageID string) ([]ModuleSource, error) {
	modules, err := p.fetcher.FetchModules(ctx, packageID)
	if err != nil {
		return nil, err
	}

	results := make([]ModuleSource, 0, len(modules))
	for _, m := range modules {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results = append(results, p.one(ctx, packageID, m))
	}
	return results, nil
}

func (p *Provider) one(ctx context.Context, packageID string, m bytecode.Module) ModuleSource {
	if entry, ok := p.store.Get(packageID, m.Name); ok {
		if entry.Failed() {
			return ModuleSource{Name: m.Name, Error: entry.FailReason}
		}
		return ModuleSource{Name: m.Name, Source: entry.Source}
	}

	if m.DecodeErr != "" {
		// Not cached: a later fetch may return a clean payload.
		return ModuleSource{Name: m.Name, Error: m.DecodeErr}
	}

	src, err := p.decompiler.Decompile(ctx, m.Name, m.Bytecode)
	if err != nil {
		// Cache write is best-effort; the marker only saves a retry.
		_ = p.store.Put(packageID, m.Name, cache.Entry{FailReason: err.Error()})
		return ModuleSource{Name: m.Name, Error: err.Error()}
	}

	_ = p.store.Put(packageID, m.Name, cache.Entry{Source: src})
	return ModuleSource{Name: m.Name, Source: src}
}
