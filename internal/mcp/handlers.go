package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
	"github.com/JesseBremer/flow-lyfe/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	bus        *notify.Bus
	exportsDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, bus *notify.Bus, exportsDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, bus: bus, exportsDir: exportsDir}
}

// Request types for each tool

// CaptureRequest represents the arguments for item_capture.
type CaptureRequest struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// GetRequest represents the arguments for item_get.
type GetRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for item_list.
type ListRequest struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Start    *int64 `json:"start,omitempty"`
	End      *int64 `json:"end,omitempty"`
	Anchors  bool   `json:"anchors,omitempty"`
}

// ProcessRequest represents the arguments for item_process.
type ProcessRequest struct {
	ID           string `json:"id"`
	Category     string `json:"category,omitempty"`
	TargetStatus string `json:"target_status,omitempty"`

	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`

	EventDate     *int64  `json:"event_date,omitempty"`
	EventEndDate  *int64  `json:"event_end_date,omitempty"`
	EventLocation *string `json:"event_location,omitempty"`

	BillAmount  *float64 `json:"bill_amount,omitempty"`
	BillDueDate *int64   `json:"bill_due_date,omitempty"`

	AwaitingFrom *string `json:"awaiting_from,omitempty"`
	AwaitingNote *string `json:"awaiting_note,omitempty"`
}

// StatusRequest represents the arguments for item_status.
type StatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SurfaceRequest represents the arguments for item_surface.
type SurfaceRequest struct {
	ID string `json:"id"`
}

// CategorizeRequest represents the arguments for item_categorize.
type CategorizeRequest struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
}

// ClusterGetRequest represents the arguments for cluster_get.
type ClusterGetRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for the export tools.
type ExportRequest struct {
	ID string `json:"id"`
}

// FocusStartRequest represents the arguments for focus_start.
type FocusStartRequest struct {
	ItemID   *string `json:"item_id,omitempty"`
	Type     string  `json:"type,omitempty"`
	Duration int     `json:"duration,omitempty"`
}

// FocusCompleteRequest represents the arguments for focus_complete.
type FocusCompleteRequest struct {
	ID string `json:"id"`
}

// ReflectionAddRequest represents the arguments for reflection_add.
type ReflectionAddRequest struct {
	Content        string   `json:"content"`
	ItemsProcessed int      `json:"items_processed,omitempty"`
	ItemsCompleted int      `json:"items_completed,omitempty"`
	AnchorIDs      []string `json:"anchor_ids,omitempty"`
}

// Handler implementations

// HandleCapture handles the item_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	it, err := ops.Capture(h.db, h.cfg, h.bus, ops.CaptureInput{
		Content: input.Content,
		Type:    item.CaptureType(input.Type),
	})
	if err != nil {
		return errorResult(err), nil
	}

	// Blank content is skipped, not an error
	return successResult(map[string]any{"item": it, "skipped": it == nil})
}

// HandleGet handles the item_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	it, err := ops.Get(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(it)
}

// HandleList handles the item_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var items []*item.Item
	switch {
	case input.Status != "":
		items, err = ops.ListByStatus(h.db, item.Status(input.Status))
	case input.Category != "":
		items, err = ops.ListByCategory(h.db, item.Category(input.Category))
	case input.Start != nil && input.End != nil:
		items, err = ops.ListByTimeRange(h.db, *input.Start, *input.End)
	case input.Anchors:
		items, err = ops.ListAnchors(h.db)
	default:
		items, err = ops.ListByStatus(h.db, item.StatusInbox)
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"items": items, "count": len(items)})
}

// HandleProcess handles the item_process tool call.
func (h *Handlers) HandleProcess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProcessRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	it, err := ops.Process(h.db, h.bus, ops.ProcessInput{
		ID:            input.ID,
		Category:      item.Category(input.Category),
		TargetStatus:  item.Status(input.TargetStatus),
		ContactName:   input.ContactName,
		ContactPhone:  input.ContactPhone,
		ContactEmail:  input.ContactEmail,
		EventDate:     input.EventDate,
		EventEndDate:  input.EventEndDate,
		EventLocation: input.EventLocation,
		BillAmount:    input.BillAmount,
		BillDueDate:   input.BillDueDate,
		AwaitingFrom:  input.AwaitingFrom,
		AwaitingNote:  input.AwaitingNote,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(it)
}

// HandleStatus handles the item_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	it, err := ops.SetStatus(h.db, h.bus, input.ID, item.Status(input.Status))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(it)
}

// HandleSurface handles the item_surface tool call.
func (h *Handlers) HandleSurface(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SurfaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	it, err := ops.Surface(h.db, h.cfg, h.bus, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(it)
}

// HandleCategorize handles the item_categorize tool call.
func (h *Handlers) HandleCategorize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategorizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var it *item.Item
	if input.Category == "" {
		it, err = ops.QuickCategorize(h.db, h.bus, input.ID)
	} else {
		it, err = ops.Categorize(h.db, h.bus, input.ID, item.Category(input.Category))
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(it)
}

// HandleClusterGet handles the cluster_get tool call.
func (h *Handlers) HandleClusterGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClusterGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	cluster, items, err := ops.ClusterItems(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"cluster": cluster, "items": items})
}

// HandleExportVCard handles the export_vcard tool call.
func (h *Handlers) HandleExportVCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.ExportContact(h.db, h.exportsDir, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleExportICal handles the export_ical tool call.
func (h *Handlers) HandleExportICal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.ExportEvent(h.db, h.exportsDir, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleExportLinks handles the export_calendar_url tool call.
func (h *Handlers) HandleExportLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := ops.Links(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleFocusStart handles the focus_start tool call.
func (h *Handlers) HandleFocusStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FocusStartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	fs, err := ops.StartFocus(h.db, ops.StartFocusInput{
		ItemID:   input.ItemID,
		Type:     item.FocusSessionType(input.Type),
		Duration: input.Duration,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(fs)
}

// HandleFocusComplete handles the focus_complete tool call.
func (h *Handlers) HandleFocusComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FocusCompleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	fs, err := ops.CompleteFocus(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(fs)
}

// HandleReflectionAdd handles the reflection_add tool call.
func (h *Handlers) HandleReflectionAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReflectionAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	r, err := ops.AddReflection(h.db, ops.AddReflectionInput{
		Content:        input.Content,
		ItemsProcessed: input.ItemsProcessed,
		ItemsCompleted: input.ItemsCompleted,
		AnchorIDs:      input.AnchorIDs,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(r)
}

// HandleReflectionList handles the reflection_list tool call.
func (h *Handlers) HandleReflectionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reflections, err := ops.ListReflections(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"reflections": reflections, "count": len(reflections)})
}

// errorResult creates an MCP error result from any error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if flowErr, ok := err.(*errors.FlowError); ok {
		errorObj := map[string]any{
			"code":    flowErr.Code,
			"message": flowErr.Message,
			"status":  flowErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if flowErr.Code != errors.ErrInternal && flowErr.Details != nil {
			errorObj["details"] = flowErr.Details
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
