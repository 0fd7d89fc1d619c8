package ops

import (
	"database/sql"

	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
)

// ProcessInput contains parameters for the Process operation.
type ProcessInput struct {
	ID string

	// Category is the explicit user pick. Empty means "no pick": the
	// keyword guess runs if the item is still uncategorized.
	Category item.Category

	// TargetStatus is the list the item should land on. Ignored (forced to
	// archived) for thought/idea categories.
	TargetStatus item.Status

	// Contact payload, written only when the resulting category is contact
	ContactName  *string
	ContactPhone *string
	ContactEmail *string

	// Event payload, written only when the resulting category is event
	EventDate     *int64
	EventEndDate  *int64
	EventLocation *string

	// Bill payload, written only when the resulting category is bill
	BillAmount  *float64
	BillDueDate *int64

	// Awaiting payload, written only when the target status is awaiting
	AwaitingFrom *string
	AwaitingNote *string
}

// Process runs one triage step: resolve the item's category (explicit pick,
// keyword guess, or keep current), move it to the target list, and attach
// the payload fields that belong to the resulting category. Thoughts and
// ideas are captured, never actioned: their status is forced to archived
// regardless of the requested target. Payload fields of other categories
// are left untouched even if stale.
func Process(database *sql.DB, bus *notify.Bus, input ProcessInput) (*item.Item, error) {
	it, err := db.GetItem(database, input.ID)
	if err != nil {
		return nil, err
	}

	category := it.Category
	if input.Category != "" {
		if !item.ValidCategory(input.Category) {
			return nil, errors.NewInvalidRequest("unknown category: " + string(input.Category))
		}
		category = input.Category
	} else if category == item.CategoryUncategorized {
		category = item.GuessCategory(it.Content)
	}

	status := input.TargetStatus
	if category == item.CategoryThought || category == item.CategoryIdea {
		status = item.StatusArchived
	} else {
		switch status {
		case item.StatusToday, item.StatusSomeday, item.StatusAwaiting, item.StatusArchived:
		default:
			return nil, errors.NewInvalidRequest("target status must be one of: today, someday, awaiting, archived")
		}
	}

	now := timeNow().Unix()
	patch := db.ItemPatch{
		Category:  &category,
		Status:    &status,
		UpdatedAt: &now,
	}

	switch category {
	case item.CategoryContact:
		patch.ContactName = input.ContactName
		patch.ContactPhone = input.ContactPhone
		patch.ContactEmail = input.ContactEmail
	case item.CategoryEvent:
		patch.EventDate = input.EventDate
		patch.EventEndDate = input.EventEndDate
		patch.EventLocation = input.EventLocation
	case item.CategoryBill:
		patch.BillAmount = input.BillAmount
		patch.BillDueDate = input.BillDueDate
	}

	if status == item.StatusAwaiting {
		patch.AwaitingFrom = input.AwaitingFrom
		patch.AwaitingNote = input.AwaitingNote
	}

	if err := db.UpdateItem(database, input.ID, patch); err != nil {
		return nil, err
	}
	bus.Publish(notify.Event{Op: notify.OpProcessed, ID: input.ID})

	return db.GetItem(database, input.ID)
}

// SetStatus moves an item to the given lifecycle state and stamps updated_at.
func SetStatus(database *sql.DB, bus *notify.Bus, id string, status item.Status) (*item.Item, error) {
	if !item.ValidStatus(status) {
		return nil, errors.NewInvalidRequest("unknown status: " + string(status))
	}

	now := timeNow().Unix()
	if err := db.UpdateItem(database, id, db.ItemPatch{Status: &status, UpdatedAt: &now}); err != nil {
		return nil, err
	}
	bus.Publish(notify.Event{Op: notify.OpStatusSet, ID: id})

	return db.GetItem(database, id)
}

// Archive moves an item to the terminal archived state.
func Archive(database *sql.DB, bus *notify.Bus, id string) (*item.Item, error) {
	return SetStatus(database, bus, id, item.StatusArchived)
}

// Categorize overwrites the item's category without touching its status.
// Re-categorizing is always allowed before archive and never clears payload
// fields left behind by an earlier category.
func Categorize(database *sql.DB, bus *notify.Bus, id string, category item.Category) (*item.Item, error) {
	if !item.ValidCategory(category) {
		return nil, errors.NewInvalidRequest("unknown category: " + string(category))
	}

	now := timeNow().Unix()
	if err := db.UpdateItem(database, id, db.ItemPatch{Category: &category, UpdatedAt: &now}); err != nil {
		return nil, err
	}
	bus.Publish(notify.Event{Op: notify.OpCategorized, ID: id})

	return db.GetItem(database, id)
}

// QuickCategorize applies the keyword guess to an item that is still
// uncategorized. An item with an explicit category is returned unchanged;
// the guess never overwrites a user pick.
func QuickCategorize(database *sql.DB, bus *notify.Bus, id string) (*item.Item, error) {
	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}
	if it.Category != item.CategoryUncategorized {
		return it, nil
	}
	return Categorize(database, bus, id, item.GuessCategory(it.Content))
}
