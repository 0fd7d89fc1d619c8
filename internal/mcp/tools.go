package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var captureToolDef = mcp.NewTool("item_capture",
	mcp.WithDescription("Capture a freeform thought into the inbox. Blank content is silently skipped. The item is auto-clustered with other recent captures."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Freeform text of the thought")),
	mcp.WithString("type", mcp.Description("Capture type: text (default), voice, or photo")),
)

var getToolDef = mcp.NewTool("item_get",
	mcp.WithDescription("Fetch a single item by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
)

var listToolDef = mcp.NewTool("item_list",
	mcp.WithDescription("List items. Filter by status, category, creation time range, or anchors only. Filters are mutually exclusive; status wins, then category, then range, then anchors. No filter lists the inbox."),
	mcp.WithString("status", mcp.Description("Lifecycle list: inbox, today, someday, awaiting, archived")),
	mcp.WithString("category", mcp.Description("Category: todo, event, contact, bill, idea, thought, uncategorized")),
	mcp.WithNumber("start", mcp.Description("Range start, unix seconds (inclusive)")),
	mcp.WithNumber("end", mcp.Description("Range end, unix seconds (inclusive)")),
	mcp.WithBoolean("anchors", mcp.Description("List only anchor items")),
)

var processToolDef = mcp.NewTool("item_process",
	mcp.WithDescription("Run one triage step on an item: resolve its category (explicit pick or keyword guess), move it to a target list, and attach category payload fields. Thoughts and ideas are always archived."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithString("category", mcp.Description("Explicit category pick; omit to keep or guess")),
	mcp.WithString("target_status", mcp.Description("Destination list: today, someday, awaiting, or archived")),
	mcp.WithString("contact_name", mcp.Description("Contact name (contact items)")),
	mcp.WithString("contact_phone", mcp.Description("Contact phone (contact items)")),
	mcp.WithString("contact_email", mcp.Description("Contact email (contact items)")),
	mcp.WithNumber("event_date", mcp.Description("Event start, unix seconds (event items)")),
	mcp.WithNumber("event_end_date", mcp.Description("Event end, unix seconds (event items)")),
	mcp.WithString("event_location", mcp.Description("Event location (event items)")),
	mcp.WithNumber("bill_amount", mcp.Description("Amount due (bill items)")),
	mcp.WithNumber("bill_due_date", mcp.Description("Due date, unix seconds (bill items)")),
	mcp.WithString("awaiting_from", mcp.Description("Who the item is waiting on (awaiting status)")),
	mcp.WithString("awaiting_note", mcp.Description("Note about what is awaited (awaiting status)")),
)

var statusToolDef = mcp.NewTool("item_status",
	mcp.WithDescription("Move an item to a lifecycle list without re-triaging it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithString("status", mcp.Required(), mcp.Description("Target list: inbox, today, someday, awaiting, archived")),
)

var surfaceToolDef = mcp.NewTool("item_surface",
	mcp.WithDescription("Resurface an item onto the today list, incrementing its surface count. Repeatedly surfaced items become anchors."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
)

var categorizeToolDef = mcp.NewTool("item_categorize",
	mcp.WithDescription("Set an item's category without touching its status. Omit the category to apply the keyword guess; the guess never overwrites an explicit pick."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithString("category", mcp.Description("Category; omit to guess from content")),
)

var clusterGetToolDef = mcp.NewTool("cluster_get",
	mcp.WithDescription("Fetch a cluster and its member items."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Cluster id")),
)

var exportVCardToolDef = mcp.NewTool("export_vcard",
	mcp.WithDescription("Write a contact item as a vCard 3.0 (.vcf) file into the exports directory."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id; must be a contact")),
)

var exportICalToolDef = mcp.NewTool("export_ical",
	mcp.WithDescription("Write an event item as an iCalendar (.ics) file into the exports directory."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id; must be an event with a date")),
)

var exportLinksToolDef = mcp.NewTool("export_calendar_url",
	mcp.WithDescription("Build the calendar quick-add URL and tel/sms/mailto links for an item. Fields that don't apply to the item's category are omitted."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
)

var focusStartToolDef = mcp.NewTool("focus_start",
	mcp.WithDescription("Start a focus timer session, optionally tied to an item."),
	mcp.WithString("item_id", mcp.Description("Item the session is for")),
	mcp.WithString("type", mcp.Description("Session type: pomodoro (default, 25 min) or flow (open-ended)")),
	mcp.WithNumber("duration", mcp.Description("Duration in minutes; overrides the type default")),
)

var focusCompleteToolDef = mcp.NewTool("focus_complete",
	mcp.WithDescription("Mark a focus session as completed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

var reflectionAddToolDef = mcp.NewTool("reflection_add",
	mcp.WithDescription("Record a daily reflection summarizing the triage session."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Reflection text")),
	mcp.WithNumber("items_processed", mcp.Description("Items triaged today")),
	mcp.WithNumber("items_completed", mcp.Description("Items finished today")),
	mcp.WithArray("anchor_ids", mcp.Description("Ids of items that are currently anchors"),
		mcp.Items(map[string]any{"type": "string"})),
)

var reflectionListToolDef = mcp.NewTool("reflection_list",
	mcp.WithDescription("List reflections, newest first."),
)
