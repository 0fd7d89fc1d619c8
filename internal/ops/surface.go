package ops

import (
	"database/sql"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
)

// Surface resurfaces an item: the surface count is incremented, the item
// moves onto the active (today) list, and last_surfaced is stamped. Once
// the count reaches the configured anchor threshold the item is marked as
// an anchor; the flag is a one-way ratchet and is never cleared here.
//
// Invoked by an external scheduler rather than the user-driven triage flow,
// but it mutates the same store.
func Surface(database *sql.DB, cfg *config.Config, bus *notify.Bus, id string) (*item.Item, error) {
	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}

	now := timeNow().Unix()
	surfaceCount := it.SurfaceCount + 1
	status := item.StatusToday

	patch := db.ItemPatch{
		Status:       &status,
		SurfaceCount: &surfaceCount,
		LastSurfaced: &now,
		UpdatedAt:    &now,
	}
	if surfaceCount >= cfg.AnchorThreshold {
		isAnchor := true
		patch.IsAnchor = &isAnchor
	}

	if err := db.UpdateItem(database, id, patch); err != nil {
		return nil, err
	}
	bus.Publish(notify.Event{Op: notify.OpSurfaced, ID: id})

	return db.GetItem(database, id)
}
