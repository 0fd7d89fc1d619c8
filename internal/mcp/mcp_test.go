package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, config.DefaultConfig(), filepath.Join(tmpDir, "exports")
}

func testHandlers(t *testing.T) *Handlers {
	t.Helper()
	database, cfg, exportsDir := testSetup(t)
	return NewHandlers(database, cfg, nil, exportsDir)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// TestHandleCapture tests the item_capture handler.
func TestHandleCapture(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		args        map[string]any
		wantError   bool
		errorCode   string
		wantSkipped bool
	}{
		{
			name:      "capture plain text",
			args:      map[string]any{"content": "buy milk"},
			wantError: false,
		},
		{
			name:        "blank content is skipped",
			args:        map[string]any{"content": "   "},
			wantError:   false,
			wantSkipped: true,
		},
		{
			name:      "unknown type",
			args:      map[string]any{"content": "x", "type": "telegram"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCapture(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
				return
			}
			output := parseOutput(t, result)
			if skipped, _ := output["skipped"].(bool); skipped != tt.wantSkipped {
				t.Errorf("skipped = %v, want %v", skipped, tt.wantSkipped)
			}
		})
	}
}

// TestHandleProcess tests the item_process handler.
func TestHandleProcess(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	captureResult, err := h.HandleCapture(ctx, makeRequest(map[string]any{"content": "pay electric bill"}))
	if err != nil {
		t.Fatalf("setup capture failed: %v", err)
	}
	output := parseOutput(t, captureResult)
	itemObj := output["item"].(map[string]any)
	itemID := itemObj["id"].(string)

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
		wantField string
		wantValue string
	}{
		{
			name:      "guess drives category",
			args:      map[string]any{"id": itemID, "target_status": "today"},
			wantField: "category",
			wantValue: "bill",
		},
		{
			name: "explicit category wins",
			args: map[string]any{
				"id":            itemID,
				"category":      "todo",
				"target_status": "someday",
			},
			wantField: "status",
			wantValue: "someday",
		},
		{
			name: "thought forced to archived",
			args: map[string]any{
				"id":            itemID,
				"category":      "thought",
				"target_status": "today",
			},
			wantField: "status",
			wantValue: "archived",
		},
		{
			name:      "missing item",
			args:      map[string]any{"id": "01NOPE", "target_status": "today"},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
		{
			name:      "bad target status",
			args:      map[string]any{"id": itemID, "category": "todo", "target_status": "done"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleProcess(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
				return
			}
			out := parseOutput(t, result)
			if got, _ := out[tt.wantField].(string); got != tt.wantValue {
				t.Errorf("%s = %q, want %q", tt.wantField, got, tt.wantValue)
			}
		})
	}
}

// TestHandleList tests the item_list handler filters.
func TestHandleList(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	for _, content := range []string{"first note", "second note"} {
		if _, err := h.HandleCapture(ctx, makeRequest(map[string]any{"content": content})); err != nil {
			t.Fatalf("setup capture failed: %v", err)
		}
	}

	t.Run("default lists inbox", func(t *testing.T) {
		result, err := h.HandleList(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if count := int(output["count"].(float64)); count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		result, err := h.HandleList(ctx, makeRequest(map[string]any{"status": "today"}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if count := int(output["count"].(float64)); count != 0 {
			t.Errorf("count = %d, want 0 (nothing on today yet)", count)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		result, err := h.HandleList(ctx, makeRequest(map[string]any{"status": "done"}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error result for unknown status")
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("anchors filter empty", func(t *testing.T) {
		result, err := h.HandleList(ctx, makeRequest(map[string]any{"anchors": true}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if count := int(output["count"].(float64)); count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})
}

// TestHandleSurfaceAnchors tests surfacing an item through the anchor threshold.
func TestHandleSurfaceAnchors(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	captureResult, err := h.HandleCapture(ctx, makeRequest(map[string]any{"content": "stubborn item"}))
	if err != nil {
		t.Fatalf("setup capture failed: %v", err)
	}
	output := parseOutput(t, captureResult)
	itemID := output["item"].(map[string]any)["id"].(string)

	var last map[string]any
	for i := 0; i < h.cfg.AnchorThreshold; i++ {
		result, err := h.HandleSurface(ctx, makeRequest(map[string]any{"id": itemID}))
		if err != nil {
			t.Fatalf("surface %d failed: %v", i+1, err)
		}
		last = parseOutput(t, result)
	}

	if isAnchor, _ := last["is_anchor"].(bool); !isAnchor {
		t.Errorf("is_anchor = %v after %d surfaces, want true", last["is_anchor"], h.cfg.AnchorThreshold)
	}

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{"anchors": true}))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	listOutput := parseOutput(t, listResult)
	if count := int(listOutput["count"].(float64)); count != 1 {
		t.Errorf("anchors count = %d, want 1", count)
	}
}

// TestHandleClusterGet tests the cluster_get handler.
func TestHandleClusterGet(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	// Two captures in quick succession share a cluster
	for _, content := range []string{"one", "two"} {
		if _, err := h.HandleCapture(ctx, makeRequest(map[string]any{"content": content})); err != nil {
			t.Fatalf("setup capture failed: %v", err)
		}
	}

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	items := parseOutput(t, listResult)["items"].([]any)
	clusterID, _ := items[0].(map[string]any)["cluster_id"].(string)
	if clusterID == "" {
		t.Fatal("captures did not cluster")
	}

	result, err := h.HandleClusterGet(ctx, makeRequest(map[string]any{"id": clusterID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	members := output["items"].([]any)
	if len(members) != 2 {
		t.Errorf("cluster members = %d, want 2", len(members))
	}

	missing, err := h.HandleClusterGet(ctx, makeRequest(map[string]any{"id": "01NOPE"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !missing.IsError {
		t.Error("expected error result for missing cluster")
	}
	assertErrorCode(t, missing, "NOT_FOUND")
}

// TestHandleExportVCard tests the export_vcard handler.
func TestHandleExportVCard(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	captureResult, err := h.HandleCapture(ctx, makeRequest(map[string]any{"content": "call mara"}))
	if err != nil {
		t.Fatalf("setup capture failed: %v", err)
	}
	itemID := parseOutput(t, captureResult)["item"].(map[string]any)["id"].(string)

	// A bare todo cannot be exported as a contact
	result, err := h.HandleExportVCard(ctx, makeRequest(map[string]any{"id": itemID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for non-contact export")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")

	// Triage it into a contact, then export succeeds
	if _, err := h.HandleProcess(ctx, makeRequest(map[string]any{
		"id":            itemID,
		"category":      "contact",
		"target_status": "today",
		"contact_name":  "Mara",
		"contact_phone": "555-0171",
	})); err != nil {
		t.Fatalf("setup process failed: %v", err)
	}

	result, err = h.HandleExportVCard(ctx, makeRequest(map[string]any{"id": itemID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if path, _ := output["path"].(string); path == "" {
		t.Error("export path should not be empty")
	}
}

// TestHandleFocusAndReflection covers the journal tools end to end.
func TestHandleFocusAndReflection(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	startResult, err := h.HandleFocusStart(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("focus_start failed: %v", err)
	}
	session := parseOutput(t, startResult)
	if d := int(session["duration"].(float64)); d != 25 {
		t.Errorf("duration = %d, want 25 (pomodoro default)", d)
	}

	completeResult, err := h.HandleFocusComplete(ctx, makeRequest(map[string]any{"id": session["id"].(string)}))
	if err != nil {
		t.Fatalf("focus_complete failed: %v", err)
	}
	done := parseOutput(t, completeResult)
	if done["completed_at"] == nil {
		t.Error("completed_at not stamped")
	}

	addResult, err := h.HandleReflectionAdd(ctx, makeRequest(map[string]any{
		"content":         "good day",
		"items_processed": 3,
	}))
	if err != nil {
		t.Fatalf("reflection_add failed: %v", err)
	}
	if addResult.IsError {
		t.Fatalf("reflection_add failed: %v", extractErrorMessage(addResult))
	}

	listResult, err := h.HandleReflectionList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("reflection_list failed: %v", err)
	}
	listOutput := parseOutput(t, listResult)
	if count := int(listOutput["count"].(float64)); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestServerRegistration(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)

	s := NewServer(database, cfg, nil, exportsDir, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"item_capture",
		"item_get",
		"item_list",
		"item_process",
		"item_status",
		"item_surface",
		"item_categorize",
		"cluster_get",
		"export_vcard",
		"export_ical",
		"export_calendar_url",
		"focus_start",
		"focus_complete",
		"reflection_add",
		"reflection_list",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)

	cfg.DisabledTools = []string{"export_vcard", "export_ical"}
	s := NewServer(database, cfg, nil, exportsDir, "test")
	tools := s.ListTools()

	if len(tools) != 13 {
		t.Errorf("registered tool count = %d, want 13", len(tools))
	}

	for _, name := range cfg.DisabledTools {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	for _, name := range []string{"item_capture", "item_process", "item_surface"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{
			name:    "all valid",
			input:   []string{"item_capture", "export_vcard"},
			wantLen: 0,
		},
		{
			name:    "one unknown",
			input:   []string{"item_capture", "fake_tool"},
			wantLen: 1,
		},
		{
			name:    "empty list",
			input:   []string{},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 15 {
		t.Errorf("AllToolNames() returned %d names, want 15", len(names))
	}

	unknown := ValidateDisabledTools(names)
	if len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_NotFoundIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("abc"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
