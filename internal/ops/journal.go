package ops

import (
	"database/sql"
	"strings"

	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
)

// StartFocusInput contains parameters for the StartFocus operation.
type StartFocusInput struct {
	ItemID   *string               // optional item the session is tied to
	Type     item.FocusSessionType // default: pomodoro
	Duration int                   // minutes; default 25 for pomodoro, 0 (open) for flow
}

// StartFocus begins a timer session, optionally tied to an item.
func StartFocus(database *sql.DB, input StartFocusInput) (*item.FocusSession, error) {
	sessionType := input.Type
	if sessionType == "" {
		sessionType = item.FocusPomodoro
	}
	if sessionType != item.FocusPomodoro && sessionType != item.FocusFlow {
		return nil, errors.NewInvalidRequest("type must be one of: pomodoro, flow")
	}

	duration := input.Duration
	if duration == 0 && sessionType == item.FocusPomodoro {
		duration = 25
	}

	if input.ItemID != nil {
		if _, err := db.GetItem(database, *input.ItemID); err != nil {
			return nil, err
		}
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	fs := &item.FocusSession{
		ID:        id,
		ItemID:    input.ItemID,
		Duration:  duration,
		Type:      sessionType,
		StartedAt: timeNow().Unix(),
	}
	if err := db.InsertFocusSession(database, fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// CompleteFocus stamps a session as finished.
func CompleteFocus(database *sql.DB, id string) (*item.FocusSession, error) {
	if err := db.CompleteFocusSession(database, id, timeNow().Unix()); err != nil {
		return nil, err
	}
	return db.GetFocusSession(database, id)
}

// AddReflectionInput contains parameters for the AddReflection operation.
type AddReflectionInput struct {
	Content        string
	ItemsProcessed int
	ItemsCompleted int
	AnchorIDs      []string
}

// AddReflection records a journal entry summarizing the day's triage.
func AddReflection(database *sql.DB, input AddReflectionInput) (*item.Reflection, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	r := &item.Reflection{
		ID:             id,
		Date:           timeNow().Unix(),
		Content:        input.Content,
		ItemsProcessed: input.ItemsProcessed,
		ItemsCompleted: input.ItemsCompleted,
		AnchorIDs:      input.AnchorIDs,
	}
	if err := db.InsertReflection(database, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReflections returns reflections newest first.
func ListReflections(database *sql.DB) ([]*item.Reflection, error) {
	return db.ListReflections(database)
}
