package ops

import (
	"database/sql"
	"strings"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Content string           // required; blank input is silently skipped
	Type    item.CaptureType // default: text
}

// Capture turns raw text into a new persisted inbox item and then links it
// into a cluster. Blank or whitespace-only content is a silent no-op that
// returns (nil, nil). Clustering runs after the insert and does not roll it
// back: on a clustering failure the created item is returned together with
// the error, and callers must not retry clustering automatically.
func Capture(database *sql.DB, cfg *config.Config, bus *notify.Bus, input CaptureInput) (*item.Item, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, nil
	}

	captureType := input.Type
	if captureType == "" {
		captureType = item.TypeText
	}
	if !item.ValidCaptureType(captureType) {
		return nil, errors.NewInvalidRequest("type must be one of: text, voice, image, bill")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := timeNow()
	it := &item.Item{
		ID:        id,
		Content:   content,
		Type:      captureType,
		Category:  item.CategoryUncategorized,
		Status:    item.StatusInbox,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
		Energy:    item.EnergyForHour(now.Hour()),
	}

	if err := db.InsertItem(database, it); err != nil {
		return nil, err
	}
	bus.Publish(notify.Event{Op: notify.OpCaptured, ID: it.ID})

	if err := AutoCluster(database, cfg, bus, it.ID); err != nil {
		return it, err
	}

	// Clustering may have linked the item; reload so callers see ClusterID
	fresh, err := db.GetItem(database, it.ID)
	if err != nil {
		return it, err
	}
	return fresh, nil
}
