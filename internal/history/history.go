// Package history determines the most recent on-chain transaction that
// touched a package, through the cursor-paginated transaction-query API.
package history

import (
	"context"

	"github.com/PassKeyRa/suisource-mcp/internal/sui"
)

const (
	defaultPageSize = 50
	defaultMaxPages = 20
)

// ChangeRecord is the latest known modification time for a package.
// Absence is expressed by a nil *ChangeRecord, never a zero timestamp.
type ChangeRecord struct {
	PackageID   string `json:"package_id"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// Tracker queries change history. A nil *Tracker is valid and means the
// feature is disabled: every lookup reports absent.
type Tracker struct {
	client   *sui.Client
	pageSize int
	maxPages int
}

// NewTracker creates a tracker over the given transaction-query endpoint.
// Zero pageSize/maxPages fall back to defaults.
func NewTracker(client *sui.Client, pageSize, maxPages int) *Tracker {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Tracker{client: client, pageSize: pageSize, maxPages: maxPages}
}

// Enabled reports whether lookups will actually query anything.
func (t *Tracker) Enabled() bool {
	return t != nil
}

// LastChanged returns the maximum transaction timestamp across every page
// of results matching "changed object = packageID", or nil when nothing
// matched. Some providers accept the filter but silently return nothing;
// that false negative is indistinguishable from "never changed" here, so
// both surface as nil. Result ordering is not trusted: every page up to
// the cap is scanned, and a short page with hasNextPage still set keeps
// the walk going.
func (t *Tracker) LastChanged(ctx context.Context, packageID string) (*ChangeRecord, error) {
	if t == nil {
		return nil, nil
	}

	filter := sui.TransactionFilter{ChangedObject: packageID}

	var (
		cursor *string
		maxMs  int64
		found  bool
	)
	for page := 0; page < t.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := t.client.QueryTransactionBlocks(ctx, filter, cursor, t.pageSize, true)
		if err != nil {
			return nil, err
		}

		for _, tx := range result.Data {
			ms, ok := sui.ParseTimestampMs(tx.TimestampMs)
			if !ok {
				continue
			}
			if !found || ms > maxMs {
				maxMs = ms
				found = true
			}
		}

		if !result.HasNextPage || result.NextCursor == nil {
			break
		}
		cursor = result.NextCursor
	}

	if !found {
		return nil, nil
	}
	return &ChangeRecord{PackageID: packageID, TimestampMs: maxMs}, nil
}
