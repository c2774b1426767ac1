package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/ops"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	backend store.Backend
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(backend store.Backend, cfg *config.Config) *Handlers {
	return &Handlers{backend: backend, cfg: cfg}
}

// Request types for each tool

// FilterArgs are the filter arguments shared by list and search.
type FilterArgs struct {
	Q        string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Pinned   *bool  `json:"pinned,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (a FilterArgs) filter() record.Filter {
	return record.Filter{
		Query:    a.Q,
		Category: a.Category,
		Status:   record.Status(a.Status),
		Pinned:   a.Pinned,
		Tag:      a.Tag,
	}
}

// ListRequest represents the arguments for record_list.
type ListRequest struct {
	Collection string `json:"collection"`
	FilterArgs
}

// GetRequest represents the arguments for record_get.
type GetRequest struct {
	Collection     string `json:"collection"`
	ID             string `json:"id"`
	RenderMarkdown bool   `json:"render_markdown,omitempty"`
}

// CreateRequest represents the arguments for record_create.
type CreateRequest struct {
	Collection  string   `json:"collection"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Category    string   `json:"category,omitempty"`
	Status      string   `json:"status,omitempty"`
	IsPinned    bool     `json:"is_pinned,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateRequest represents the arguments for record_update.
type UpdateRequest struct {
	Collection  string                  `json:"collection"`
	ID          string                  `json:"id"`
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	URL         *string                 `json:"url,omitempty"`
	Category    *string                 `json:"category,omitempty"`
	Status      *record.Status          `json:"status,omitempty"`
	IsPinned    *bool                   `json:"is_pinned,omitempty"`
	Priority    *record.Priority        `json:"priority,omitempty"`
	DueDate     record.Nullable[string] `json:"due_date"`
	Tags        *[]string               `json:"tags,omitempty"`
}

// DeleteRequest represents the arguments for record_delete.
type DeleteRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// SearchRequest represents the arguments for record_search.
type SearchRequest struct {
	Collections []string `json:"collections,omitempty"`
	FilterArgs
}

// ClearAllRequest represents the arguments for record_clear_all.
type ClearAllRequest struct {
	Confirm bool `json:"confirm"`
}

// ExportRequest represents the arguments for record_export.
type ExportRequest struct {
	Path        string   `json:"path,omitempty"`
	Collections []string `json:"collections,omitempty"`
}

// ImportRequest represents the arguments for record_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleList handles the record_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseCollection(input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.backend, ops.ListInput{Kind: kind, Filter: input.filter()})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the record_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseCollection(input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.backend, ops.FetchInput{
		Kind:           kind,
		ID:             input.ID,
		RenderMarkdown: input.RenderMarkdown,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCreate handles the record_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseCollection(input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Create(ctx, h.backend, ops.CreateInput{
		Kind: kind,
		Draft: record.Draft{
			Name:        input.Name,
			Description: input.Description,
			URL:         input.URL,
			Category:    input.Category,
			Status:      record.Status(input.Status),
			IsPinned:    input.IsPinned,
			Priority:    record.Priority(input.Priority),
			DueDate:     input.DueDate,
			Tags:        input.Tags,
		},
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the record_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseCollection(input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Update(ctx, h.backend, ops.UpdateInput{
		Kind: kind,
		ID:   input.ID,
		Patch: record.Patch{
			Name:        input.Name,
			Description: input.Description,
			URL:         input.URL,
			Category:    input.Category,
			Status:      input.Status,
			IsPinned:    input.IsPinned,
			Priority:    input.Priority,
			DueDate:     input.DueDate,
			Tags:        input.Tags,
		},
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the record_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseCollection(input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.backend, ops.DeleteInput{Kind: kind, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the record_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kinds, err := parseCollections(input.Collections)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Search(ctx, h.backend, ops.SearchInput{Filter: input.filter(), Kinds: kinds})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStats handles the record_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.backend)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHealth handles the record_health tool call.
func (h *Handlers) HandleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Health(ctx, h.backend)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClearAll handles the record_clear_all tool call.
func (h *Handlers) HandleClearAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearAllRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm must be true")), nil
	}

	result, err := ops.ClearAll(ctx, h.backend)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the record_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kinds, err := parseCollections(input.Collections)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.backend, h.cfg, ops.ExportInput{Path: input.Path, Kinds: kinds})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the record_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.backend, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

func parseCollections(names []string) ([]record.Kind, error) {
	var kinds []record.Kind
	for _, name := range names {
		kind, err := parseCollection(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Server-side causes are never included.
func errorResult(err error) *mcp.CallToolResult {
	dErr := errors.As(err)

	errorObj := map[string]any{
		"code":    dErr.Code,
		"message": dErr.Message,
		"status":  dErr.Status,
	}
	if dErr.Status < 500 && dErr.Details != nil {
		errorObj["details"] = dErr.Details
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
