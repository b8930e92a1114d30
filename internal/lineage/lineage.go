// Package lineage resolves the full upgrade family of a package: the
// original package and every subsequent upgraded version.
package lineage

import (
	"context"
	"sort"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/sui"
)

// Entry is one package in an upgrade family.
type Entry struct {
	PackageID string `json:"package_id"`
	Version   uint64 `json:"version"`
}

// Lineage is the ordered upgrade family of one logical package,
// ascending by version.
type Lineage struct {
	OriginalID string  `json:"original_id"`
	Packages   []Entry `json:"packages"`
}

const versionPageSize = 50

// Caps the version-index walk; a lineage deeper than this is beyond any
// real upgrade history and indicates a misbehaving endpoint.
const maxVersionPages = 16

// Resolver determines upgrade families through the RPC API.
type Resolver struct {
	client *sui.Client
}

// NewResolver creates a Resolver bound to the given RPC client.
func NewResolver(client *sui.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the upgrade family containing packageID. Only the root
// lookup can fail the call; version links that are missing, unsupported
// by the endpoint, or unreadable just end the walk in that direction.
// The result always contains packageID, has no duplicates, and is sorted
// ascending by version with ties broken by id for determinism.
func (r *Resolver) Resolve(ctx context.Context, packageID string) (*Lineage, error) {
	obj, err := r.client.GetObject(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !obj.IsPackage() {
		return nil, errors.NewNotAPackage(packageID)
	}

	entries := map[string]uint64{packageID: versionOf(obj)}
	original := originalOf(packageID, obj)

	if original != packageID {
		// Best-effort: an unreadable original is a missing backward link.
		if root, err := r.client.GetObject(ctx, original); err == nil && root.IsPackage() {
			entries[original] = versionOf(root)
		}
	}

	r.walkVersionIndex(ctx, original, entries)

	lineage := &Lineage{OriginalID: original, Packages: make([]Entry, 0, len(entries))}
	for id, version := range entries {
		lineage.Packages = append(lineage.Packages, Entry{PackageID: id, Version: version})
	}
	sort.Slice(lineage.Packages, func(i, j int) bool {
		a, b := lineage.Packages[i], lineage.Packages[j]
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.PackageID < b.PackageID
	})
	return lineage, nil
}

// walkVersionIndex merges every (id, version) link the endpoint's version
// index reports for the family rooted at original. Any error ends the
// walk; what was merged so far stands.
func (r *Resolver) walkVersionIndex(ctx context.Context, original string, entries map[string]uint64) {
	var cursor *string
	for page := 0; page < maxVersionPages; page++ {
		result, err := r.client.GetPackageVersions(ctx, original, cursor, versionPageSize)
		if err != nil {
			// Unsupported method or failing index: end of the walk.
			return
		}
		for _, pv := range result.Data {
			if pv.PackageID == "" {
				continue
			}
			if _, seen := entries[pv.PackageID]; seen {
				continue
			}
			v, err := sui.ParseVersion(pv.Version)
			if err != nil {
				continue
			}
			entries[pv.PackageID] = v
		}
		if !result.HasNextPage || result.NextCursor == nil {
			return
		}
		cursor = result.NextCursor
	}
}

// originalOf extracts the upgrade-chain root from package metadata. Types
// keep their defining package across upgrades, so the first type-origin
// entry points at the original; a package with no recorded origins is its
// own root.
func originalOf(packageID string, obj *sui.ObjectData) string {
	for _, origin := range obj.BCS.TypeOriginTable {
		if origin.Package != "" {
			return origin.Package
		}
	}
	return packageID
}

func versionOf(obj *sui.ObjectData) uint64 {
	v, err := sui.ParseVersion(obj.Version)
	if err != nil {
		return 0
	}
	return v
}
