package ops

import (
	"database/sql"

	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
)

// Get returns a single item by id.
func Get(database *sql.DB, id string) (*item.Item, error) {
	return db.GetItem(database, id)
}

// ListByStatus returns items on the given list in creation order.
func ListByStatus(database *sql.DB, status item.Status) ([]*item.Item, error) {
	if !item.ValidStatus(status) {
		return nil, errors.NewInvalidRequest("unknown status: " + string(status))
	}
	return db.ItemsByStatus(database, status)
}

// ListByCategory returns items whose category is any of the given ones.
func ListByCategory(database *sql.DB, categories ...item.Category) ([]*item.Item, error) {
	for _, c := range categories {
		if !item.ValidCategory(c) {
			return nil, errors.NewInvalidRequest("unknown category: " + string(c))
		}
	}
	return db.ItemsByCategory(database, categories...)
}

// ListByTimeRange returns items created in [start, end] inclusive.
func ListByTimeRange(database *sql.DB, start, end int64) ([]*item.Item, error) {
	if end < start {
		return nil, errors.NewInvalidRequest("end must not be before start")
	}
	return db.ItemsByTimeRange(database, start, end)
}

// ListAnchors returns items that have ratcheted into anchors.
func ListAnchors(database *sql.DB) ([]*item.Item, error) {
	return db.AnchorItems(database)
}

// ListClusters returns all clusters in creation order.
func ListClusters(database *sql.DB) ([]*item.Cluster, error) {
	return db.ListClusters(database)
}
