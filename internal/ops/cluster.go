package ops

import (
	"database/sql"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
)

// AutoCluster links the item into a cluster with its temporal neighbors:
// items created within the configured window (default ±15 minutes,
// inclusive) of the item's creation time.
//
// Idempotent: a missing or already-clustered item is a no-op. If any
// neighbor already carries a cluster, the item joins the first such cluster
// in creation order; otherwise a window with more than one item seeds a new
// cluster over every item in it. The window-wide fan-out is a plain loop
// with no transaction, so a failure mid-way can leave partial membership.
func AutoCluster(database *sql.DB, cfg *config.Config, bus *notify.Bus, itemID string) error {
	it, err := db.GetItem(database, itemID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		return err
	}
	if it.ClusterID != nil {
		return nil
	}

	windowSecs := int64(cfg.ClusterWindowMinutes) * 60
	neighbors, err := db.ItemsByTimeRange(database, it.CreatedAt-windowSecs, it.CreatedAt+windowSecs)
	if err != nil {
		return err
	}

	// Join the first existing cluster found in query order. Two seeded
	// clusters straddling the window is possible under concurrent writes;
	// no merge is attempted.
	for _, neighbor := range neighbors {
		if neighbor.ClusterID == nil || neighbor.ID == it.ID {
			continue
		}
		clusterID := *neighbor.ClusterID
		if err := db.UpdateItem(database, it.ID, db.ItemPatch{ClusterID: &clusterID}); err != nil {
			return err
		}
		if err := db.AppendClusterItem(database, clusterID, it.ID); err != nil {
			return err
		}
		bus.Publish(notify.Event{Op: notify.OpClustered, ID: it.ID})
		return nil
	}

	if len(neighbors) <= 1 {
		// Solitary capture; stays unclustered
		return nil
	}

	clusterID, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}

	context := item.ContextForEnergy(it.Energy)
	cluster := &item.Cluster{
		ID:        clusterID,
		CreatedAt: timeNow().Unix(),
		Context:   &context,
	}
	for _, neighbor := range neighbors {
		cluster.Items = append(cluster.Items, neighbor.ID)
	}

	if err := db.InsertCluster(database, cluster); err != nil {
		return err
	}
	bus.Publish(notify.Event{Op: notify.OpClusterMade, ID: clusterID})

	for _, neighbor := range neighbors {
		if err := db.UpdateItem(database, neighbor.ID, db.ItemPatch{ClusterID: &clusterID}); err != nil {
			return err
		}
		bus.Publish(notify.Event{Op: notify.OpClustered, ID: neighbor.ID})
	}

	return nil
}

// ClusterItems returns a cluster together with its member items in
// creation order.
func ClusterItems(database *sql.DB, clusterID string) (*item.Cluster, []*item.Item, error) {
	cluster, err := db.GetCluster(database, clusterID)
	if err != nil {
		return nil, nil, err
	}
	items, err := db.ItemsByCluster(database, clusterID)
	if err != nil {
		return nil, nil, err
	}
	return cluster, items, nil
}
