// Package bytecode retrieves the raw module bytecode of an on-chain
// move package.
package bytecode

import (
	"context"
	"encoding/base64"
	"sort"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/sui"
)

// Module is one named bytecode unit within a package. DecodeErr is set
// when the node returned a payload that is not valid base64; such a
// module still appears in results so callers can report it per-module.
type Module struct {
	Name      string
	Bytecode  []byte
	DecodeErr string
}

// Fetcher downloads package bytecode through the Sui RPC API.
type Fetcher struct {
	client *sui.Client
}

// NewFetcher creates a Fetcher bound to the given RPC client.
func NewFetcher(client *sui.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchModules resolves packageID on-chain and returns each module's raw
// bytecode, sorted by module name. An object that resolves but is not a
// package fails with NOT_A_PACKAGE, distinct from NOT_FOUND.
func (f *Fetcher) FetchModules(ctx context.Context, packageID string) ([]Module, error) {
	obj, err := f.client.GetObject(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !obj.IsPackage() {
		return nil, errors.NewNotAPackage(packageID)
	}

	modules := make([]Module, 0, len(obj.BCS.ModuleMap))
	for name, encoded := range obj.BCS.ModuleMap {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			modules = append(modules, Module{Name: name, DecodeErr: "invalid base64 bytecode: " + err.Error()})
			continue
		}
		modules = append(modules, Module{Name: name, Bytecode: raw})
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}
