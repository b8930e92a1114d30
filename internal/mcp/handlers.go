package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// SourceRequest represents the arguments for get_source_code.
type SourceRequest struct {
	PackageID string `json:"package_id"`
}

// ProjectRequest represents the arguments for get_project_info.
type ProjectRequest struct {
	PackageID string `json:"package_id"`
}

// RunsRequest represents the arguments for list_runs.
type RunsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// Handler implementations

// HandleHealthCheck handles the health_check tool call.
func (h *Handlers) HandleHealthCheck(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.HealthCheck(ctx, h.env))
}

// HandleGetSourceCode handles the get_source_code tool call.
func (h *Handlers) HandleGetSourceCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SourceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetSourceCode(ctx, h.env, ops.GetSourceCodeInput{
		PackageID: input.PackageID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGetProjectInfo handles the get_project_info tool call.
func (h *Handlers) HandleGetProjectInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetProjectInfo(ctx, h.env, ops.GetProjectInfoInput{
		PackageID: input.PackageID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListRuns handles the list_runs tool call.
func (h *Handlers) HandleListRuns(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListRuns(h.env, ops.ListRunsInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from any error.
// Structured errors keep their code, message, and status; anything else
// collapses to a generic INTERNAL payload so details never leak.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if opErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    opErr.Code,
			"message": opErr.Message,
			"status":  opErr.Status,
		}
		if opErr.Code != errors.ErrInternal && opErr.Details != nil {
			errorObj["details"] = opErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
