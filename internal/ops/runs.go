package ops

import (
	"github.com/PassKeyRa/suisource-mcp/internal/catalog"
)

// ListRunsInput contains parameters for the ListRuns operation.
type ListRunsInput struct {
	Limit int
}

// ListRunsOutput contains recent catalog entries, newest first.
type ListRunsOutput struct {
	Runs []catalog.Run `json:"runs"`
}

// ListRuns reads back recent tool runs from the catalog. With no
// catalog attached the listing is empty, not an error.
func ListRuns(env *Env, input ListRunsInput) (*ListRunsOutput, error) {
	if env.DB == nil {
		return &ListRunsOutput{Runs: []catalog.Run{}}, nil
	}

	runs, err := catalog.List(env.DB, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ListRunsOutput{Runs: runs}, nil
}
