// Package item defines the domain types for Flow-Lyfe.
package item

// CaptureType is the origin medium of a captured item.
type CaptureType string

const (
	TypeText  CaptureType = "text"
	TypeVoice CaptureType = "voice"
	TypeImage CaptureType = "image"
	TypeBill  CaptureType = "bill"
)

// Category classifies what kind of thing an item is once processed.
type Category string

const (
	CategoryUncategorized Category = "uncategorized"
	CategoryThought       Category = "thought"
	CategoryIdea          Category = "idea"
	CategoryTodo          Category = "todo"
	CategoryContact       Category = "contact"
	CategoryEvent         Category = "event"
	CategoryBill          Category = "bill"
)

// Status is the lifecycle state of an item. Inbox items move onto one of
// the active lists (today/someday/awaiting) or straight to archived.
// Archived is terminal.
type Status string

const (
	StatusInbox    Status = "inbox"
	StatusToday    Status = "today"
	StatusSomeday  Status = "someday"
	StatusAwaiting Status = "awaiting"
	StatusArchived Status = "archived"
)

// Energy is the capture-time energy bucket derived from the wall clock.
type Energy string

const (
	EnergyHigh   Energy = "high"
	EnergyMedium Energy = "medium"
	EnergyLow    Energy = "low"
)

// AnchorThreshold is the surface count at which an item becomes an anchor.
const AnchorThreshold = 3

// Item is a captured unit of work.
type Item struct {
	// ID is a ULID that uniquely identifies this item
	ID string `json:"id"`

	// Content is the captured text; immutable after capture
	Content string `json:"content"`

	// Type is the origin medium (informational only)
	Type CaptureType `json:"type"`

	// Category starts uncategorized and is set by an explicit pick or the
	// keyword guess; it may change any number of times before archive
	Category Category `json:"category"`

	// Status is the lifecycle state
	Status Status `json:"status"`

	// CreatedAt/UpdatedAt are Unix timestamps; UpdatedAt is refreshed on
	// every mutation
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	// Energy is derived once at capture time, never recomputed
	Energy Energy `json:"energy"`

	// Temperature is an urgency score (0-100); captured at 0
	Temperature int `json:"temperature"`

	// ClusterID links the item to a cluster; set at most once
	ClusterID *string `json:"cluster_id,omitempty"`

	// DueDate is an optional deadline (nullable)
	DueDate *int64 `json:"due_date,omitempty"`

	// Tags is a list of tags (stored as JSON in DB)
	Tags []string `json:"tags,omitempty"`

	// Contact payload (meaningful when Category == contact)
	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`

	// Event payload (meaningful when Category == event)
	EventDate     *int64  `json:"event_date,omitempty"`
	EventEndDate  *int64  `json:"event_end_date,omitempty"`
	EventLocation *string `json:"event_location,omitempty"`

	// Awaiting payload (meaningful when Status == awaiting)
	AwaitingFrom *string `json:"awaiting_from,omitempty"`
	AwaitingNote *string `json:"awaiting_note,omitempty"`

	// Bill payload (meaningful when Category == bill)
	BillAmount  *float64 `json:"bill_amount,omitempty"`
	BillDueDate *int64   `json:"bill_due_date,omitempty"`

	// Resurfacing counters. IsAnchor ratchets true once SurfaceCount
	// reaches AnchorThreshold and is never cleared.
	SurfaceCount int    `json:"surface_count"`
	LastSurfaced *int64 `json:"last_surfaced,omitempty"`
	IsAnchor     bool   `json:"is_anchor"`
}

// Cluster groups items captured within a short time window.
// Items is append-only; an item never leaves or switches clusters.
type Cluster struct {
	ID        string   `json:"id"`
	Items     []string `json:"items"`
	CreatedAt int64    `json:"created_at"`

	// Context is a label (morning/afternoon/evening) fixed from the
	// triggering item's energy at creation
	Context *string `json:"context,omitempty"`

	// Keywords is reserved for future content-based labeling
	Keywords []string `json:"keywords,omitempty"`
}

// FocusSessionType distinguishes timed from open-ended sessions.
type FocusSessionType string

const (
	FocusPomodoro FocusSessionType = "pomodoro"
	FocusFlow     FocusSessionType = "flow"
)

// FocusSession records a timer session, optionally tied to an item.
type FocusSession struct {
	ID          string           `json:"id"`
	ItemID      *string          `json:"item_id,omitempty"`
	Duration    int              `json:"duration"` // minutes
	Type        FocusSessionType `json:"type"`
	StartedAt   int64            `json:"started_at"`
	CompletedAt *int64           `json:"completed_at,omitempty"`
}

// Reflection is a daily journal entry summarizing triage activity.
type Reflection struct {
	ID             string   `json:"id"`
	Date           int64    `json:"date"`
	Content        string   `json:"content"`
	ItemsProcessed int      `json:"items_processed"`
	ItemsCompleted int      `json:"items_completed"`
	AnchorIDs      []string `json:"anchor_ids,omitempty"`
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryUncategorized, CategoryThought, CategoryIdea, CategoryTodo,
		CategoryContact, CategoryEvent, CategoryBill:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusInbox, StatusToday, StatusSomeday, StatusAwaiting, StatusArchived:
		return true
	}
	return false
}

// ValidCaptureType reports whether t is a known capture type.
func ValidCaptureType(t CaptureType) bool {
	switch t {
	case TypeText, TypeVoice, TypeImage, TypeBill:
		return true
	}
	return false
}

// EnergyForHour maps a local clock hour to an energy bucket:
// [6,12) high, [12,18) medium, otherwise low.
func EnergyForHour(hour int) Energy {
	switch {
	case hour >= 6 && hour < 12:
		return EnergyHigh
	case hour >= 12 && hour < 18:
		return EnergyMedium
	default:
		return EnergyLow
	}
}

// ContextForEnergy maps an energy bucket to a cluster context label.
func ContextForEnergy(e Energy) string {
	switch e {
	case EnergyHigh:
		return "morning"
	case EnergyLow:
		return "evening"
	default:
		return "afternoon"
	}
}
