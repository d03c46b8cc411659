package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/timecapsule/internal/config"
	"github.com/hpungsan/timecapsule/internal/errors"
	"github.com/hpungsan/timecapsule/internal/ops"
	"github.com/hpungsan/timecapsule/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *store.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: st, cfg: cfg}
}

// StoreRequest represents the arguments for capsule_store.
type StoreRequest struct {
	Message  *string `json:"message"`
	OpenDate *string `json:"open_date"`
}

// IDRequest represents the arguments for capsule_fetch and capsule_delete.
// CapsuleID is nil when the argument is absent.
type IDRequest struct {
	CapsuleID *string `json:"capsule_id"`
}

// HandleStore handles the capsule_store tool call.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, dErr := decode[StoreRequest](req)
	if dErr != nil {
		return errorResult(dErr), nil
	}
	if input.Message == nil || input.OpenDate == nil {
		return errorResult(errors.NewInvalidRequest("message and open_date are required")), nil
	}

	result, err := ops.Store(h.store, h.cfg, ops.StoreInput{
		Message:  *input.Message,
		OpenDate: *input.OpenDate,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the capsule_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, dErr := decode[IDRequest](req)
	if dErr != nil {
		return errorResult(dErr), nil
	}
	id, err := ops.RequireID(input.CapsuleID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(h.store, ops.FetchInput{ID: id})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, dErr := decode[IDRequest](req)
	if dErr != nil {
		return errorResult(dErr), nil
	}
	id, err := ops.RequireID(input.CapsuleID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(h.store, ops.DeleteInput{ID: id})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	ce := errors.As(err)

	errorObj := map[string]any{
		"code":    ce.Code,
		"message": ce.Message,
		"status":  ce.Status,
	}
	// Internal errors may carry file paths or SQL text
	if ce.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if ce.Details != nil {
		errorObj["details"] = ce.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
