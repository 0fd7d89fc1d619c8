package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"item_capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"item_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"item_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"item_process": {
		def:     processToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProcess },
	},
	"item_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"item_surface": {
		def:     surfaceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSurface },
	},
	"item_categorize": {
		def:     categorizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategorize },
	},
	"cluster_get": {
		def:     clusterGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClusterGet },
	},
	"export_vcard": {
		def:     exportVCardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportVCard },
	},
	"export_ical": {
		def:     exportICalToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportICal },
	},
	"export_calendar_url": {
		def:     exportLinksToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportLinks },
	},
	"focus_start": {
		def:     focusStartToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFocusStart },
	},
	"focus_complete": {
		def:     focusCompleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFocusComplete },
	},
	"reflection_add": {
		def:     reflectionAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReflectionAdd },
	},
	"reflection_list": {
		def:     reflectionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReflectionList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Flow-Lyfe tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, bus *notify.Bus, exportsDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"flow-lyfe",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, bus, exportsDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, bus *notify.Bus, exportsDir, version string) error {
	s := NewServer(db, cfg, bus, exportsDir, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
