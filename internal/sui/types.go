package sui

import (
	"fmt"
	"strconv"
)

// ObjectResponse is the result payload of sui_getObject. The node reports
// missing objects inside the result envelope, not as a JSON-RPC error.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data"`
	Error *ObjectError `json:"error"`
}

// ObjectError describes why an object lookup yielded no data.
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

// ObjectData is the on-chain object metadata returned by sui_getObject.
type ObjectData struct {
	ObjectID string      `json:"objectId"`
	Version  string      `json:"version"`
	Digest   string      `json:"digest"`
	Type     string      `json:"type"`
	BCS      *RawPackage `json:"bcs"`
}

// RawPackage is the BCS view of a package object. For non-package objects
// DataType carries "moveObject" instead and the package fields stay empty.
type RawPackage struct {
	DataType        string                 `json:"dataType"`
	ID              string                 `json:"id"`
	ModuleMap       map[string]string      `json:"moduleMap"`
	TypeOriginTable []TypeOrigin           `json:"typeOriginTable"`
	LinkageTable    map[string]UpgradeInfo `json:"linkageTable"`
}

// IsPackage reports whether the object's BCS payload is a move package.
func (d *ObjectData) IsPackage() bool {
	return d != nil && d.BCS != nil && d.BCS.DataType == "package"
}

// TypeOrigin records the package that originally defined a datatype.
// Types keep their defining package across upgrades, so the first entry
// points at the root of the upgrade chain.
type TypeOrigin struct {
	ModuleName   string `json:"module_name"`
	DatatypeName string `json:"datatype_name"`
	Package      string `json:"package"`
}

// UpgradeInfo is a linkage table entry mapping an original dependency id
// to the version the package was built against.
type UpgradeInfo struct {
	UpgradedID      string `json:"upgraded_id"`
	UpgradedVersion uint64 `json:"upgraded_version"`
}

// TransactionBlocksPage is one page of suix_queryTransactionBlocks results.
type TransactionBlocksPage struct {
	Data        []TransactionBlock `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

// TransactionBlock is a single transaction digest with its checkpoint timestamp.
type TransactionBlock struct {
	Digest      string `json:"digest"`
	TimestampMs string `json:"timestampMs"`
}

// TransactionFilter selects transactions for suix_queryTransactionBlocks.
// Only the changed-object filter is used here.
type TransactionFilter struct {
	ChangedObject string `json:"ChangedObject,omitempty"`
}

// PackageVersionsPage is one page of the object-version index for a package
// lineage, keyed by the original package id.
type PackageVersionsPage struct {
	Data        []PackageVersion `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// PackageVersion is a single (package id, version) link in a lineage.
type PackageVersion struct {
	PackageID string `json:"packageId"`
	Version   string `json:"version"`
}

// ParseVersion parses the decimal string versions the API uses.
func ParseVersion(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty version")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// ParseTimestampMs parses a transaction timestamp. Missing timestamps
// (pre-checkpoint transactions) return ok=false rather than an error.
func ParseTimestampMs(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
