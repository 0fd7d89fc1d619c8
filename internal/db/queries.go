package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
)

const itemColumns = `id, content, type, category, status, created_at, updated_at,
	energy, temperature, cluster_id, due_date, tags_json,
	contact_name, contact_phone, contact_email,
	event_date, event_end_date, event_location,
	awaiting_from, awaiting_note, bill_amount, bill_due_date,
	surface_count, last_surfaced, is_anchor`

// InsertItem stores a new item in the database.
func InsertItem(db *sql.DB, it *item.Item) error {
	tagsJSON, err := marshalTags(it.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO items (
			id, content, type, category, status, created_at, updated_at,
			energy, temperature, cluster_id, due_date, tags_json,
			contact_name, contact_phone, contact_email,
			event_date, event_end_date, event_location,
			awaiting_from, awaiting_note, bill_amount, bill_due_date,
			surface_count, last_surfaced, is_anchor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		it.ID, it.Content, string(it.Type), string(it.Category), string(it.Status),
		it.CreatedAt, it.UpdatedAt, string(it.Energy), it.Temperature,
		toNullString(it.ClusterID), toNullInt64(it.DueDate), tagsJSON,
		toNullString(it.ContactName), toNullString(it.ContactPhone), toNullString(it.ContactEmail),
		toNullInt64(it.EventDate), toNullInt64(it.EventEndDate), toNullString(it.EventLocation),
		toNullString(it.AwaitingFrom), toNullString(it.AwaitingNote),
		toNullFloat64(it.BillAmount), toNullInt64(it.BillDueDate),
		it.SurfaceCount, toNullInt64(it.LastSurfaced), boolToInt(it.IsAnchor),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateID(it.ID)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetItem retrieves an item by its ULID.
func GetItem(db *sql.DB, id string) (*item.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE id = ?"
	it, err := scanItem(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// ItemPatch describes a partial update of an item. Only non-nil fields are
// written. UpdatedAt is NOT stamped here; callers decide when a mutation
// counts as an update.
type ItemPatch struct {
	Category      *item.Category
	Status        *item.Status
	UpdatedAt     *int64
	Temperature   *int
	ClusterID     *string
	DueDate       *int64
	Tags          *[]string
	ContactName   *string
	ContactPhone  *string
	ContactEmail  *string
	EventDate     *int64
	EventEndDate  *int64
	EventLocation *string
	AwaitingFrom  *string
	AwaitingNote  *string
	BillAmount    *float64
	BillDueDate   *int64
	SurfaceCount  *int
	LastSurfaced  *int64
	IsAnchor      *bool
}

// UpdateItem merges the patch's non-nil fields into the stored item.
// Returns NOT_FOUND if the id does not exist.
func UpdateItem(db *sql.DB, id string, patch ItemPatch) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	}
	if patch.Temperature != nil {
		add("temperature", *patch.Temperature)
	}
	if patch.ClusterID != nil {
		add("cluster_id", *patch.ClusterID)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Tags != nil {
		tagsJSON, err := marshalTags(*patch.Tags)
		if err != nil {
			return errors.NewInternal(err)
		}
		add("tags_json", tagsJSON)
	}
	if patch.ContactName != nil {
		add("contact_name", *patch.ContactName)
	}
	if patch.ContactPhone != nil {
		add("contact_phone", *patch.ContactPhone)
	}
	if patch.ContactEmail != nil {
		add("contact_email", *patch.ContactEmail)
	}
	if patch.EventDate != nil {
		add("event_date", *patch.EventDate)
	}
	if patch.EventEndDate != nil {
		add("event_end_date", *patch.EventEndDate)
	}
	if patch.EventLocation != nil {
		add("event_location", *patch.EventLocation)
	}
	if patch.AwaitingFrom != nil {
		add("awaiting_from", *patch.AwaitingFrom)
	}
	if patch.AwaitingNote != nil {
		add("awaiting_note", *patch.AwaitingNote)
	}
	if patch.BillAmount != nil {
		add("bill_amount", *patch.BillAmount)
	}
	if patch.BillDueDate != nil {
		add("bill_due_date", *patch.BillDueDate)
	}
	if patch.SurfaceCount != nil {
		add("surface_count", *patch.SurfaceCount)
	}
	if patch.LastSurfaced != nil {
		add("last_surfaced", *patch.LastSurfaced)
	}
	if patch.IsAnchor != nil {
		add("is_anchor", boolToInt(*patch.IsAnchor))
	}

	if len(sets) == 0 {
		// Nothing to merge; still verify the row exists
		_, err := GetItem(db, id)
		return err
	}

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	result, err := db.Exec(query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// ItemsByStatus returns items with the given status in creation order.
func ItemsByStatus(db *sql.DB, status item.Status) ([]*item.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE status = ? ORDER BY created_at ASC"
	return queryItems(db, query, string(status))
}

// ItemsByCategory returns items whose category is any of the given ones,
// in creation order.
func ItemsByCategory(db *sql.DB, categories ...item.Category) ([]*item.Item, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(categories)), ", ")
	query := "SELECT " + itemColumns + " FROM items WHERE category IN (" + placeholders + ") ORDER BY created_at ASC"
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = string(c)
	}
	return queryItems(db, query, args...)
}

// ItemsByTimeRange returns items with created_at in [start, end] inclusive,
// in creation order.
func ItemsByTimeRange(db *sql.DB, start, end int64) ([]*item.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE created_at >= ? AND created_at <= ? ORDER BY created_at ASC"
	return queryItems(db, query, start, end)
}

// ItemsByCluster returns the items linked to the given cluster, in creation order.
func ItemsByCluster(db *sql.DB, clusterID string) ([]*item.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE cluster_id = ? ORDER BY created_at ASC"
	return queryItems(db, query, clusterID)
}

// AnchorItems returns items whose anchor flag is set, in creation order.
func AnchorItems(db *sql.DB) ([]*item.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE is_anchor = 1 ORDER BY created_at ASC"
	return queryItems(db, query)
}

func queryItems(db *sql.DB, query string, args ...any) ([]*item.Item, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanItem.
type scanner interface {
	Scan(dest ...any) error
}

// scanItem scans a single row into an Item struct.
func scanItem(row scanner) (*item.Item, error) {
	var (
		it            item.Item
		typ           string
		category      string
		status        string
		energy        string
		clusterID     sql.NullString
		dueDate       sql.NullInt64
		tagsJSON      sql.NullString
		contactName   sql.NullString
		contactPhone  sql.NullString
		contactEmail  sql.NullString
		eventDate     sql.NullInt64
		eventEndDate  sql.NullInt64
		eventLocation sql.NullString
		awaitingFrom  sql.NullString
		awaitingNote  sql.NullString
		billAmount    sql.NullFloat64
		billDueDate   sql.NullInt64
		lastSurfaced  sql.NullInt64
		isAnchor      int
	)

	err := row.Scan(
		&it.ID, &it.Content, &typ, &category, &status, &it.CreatedAt, &it.UpdatedAt,
		&energy, &it.Temperature, &clusterID, &dueDate, &tagsJSON,
		&contactName, &contactPhone, &contactEmail,
		&eventDate, &eventEndDate, &eventLocation,
		&awaitingFrom, &awaitingNote, &billAmount, &billDueDate,
		&it.SurfaceCount, &lastSurfaced, &isAnchor,
	)
	if err != nil {
		return nil, err
	}

	it.Type = item.CaptureType(typ)
	it.Category = item.Category(category)
	it.Status = item.Status(status)
	it.Energy = item.Energy(energy)
	it.ClusterID = fromNullString(clusterID)
	it.DueDate = fromNullInt64(dueDate)
	it.ContactName = fromNullString(contactName)
	it.ContactPhone = fromNullString(contactPhone)
	it.ContactEmail = fromNullString(contactEmail)
	it.EventDate = fromNullInt64(eventDate)
	it.EventEndDate = fromNullInt64(eventEndDate)
	it.EventLocation = fromNullString(eventLocation)
	it.AwaitingFrom = fromNullString(awaitingFrom)
	it.AwaitingNote = fromNullString(awaitingNote)
	it.BillAmount = fromNullFloat64(billAmount)
	it.BillDueDate = fromNullInt64(billDueDate)
	it.LastSurfaced = fromNullInt64(lastSurfaced)
	it.IsAnchor = isAnchor != 0

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &it.Tags); err != nil {
			return nil, err
		}
	}

	return &it, nil
}

// InsertCluster stores a new cluster.
func InsertCluster(db *sql.DB, c *item.Cluster) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return errors.NewInternal(err)
	}
	keywordsJSON, err := marshalTags(c.Keywords)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO clusters (id, items_json, created_at, context, keywords_json)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query, c.ID, string(itemsJSON), c.CreatedAt, toNullString(c.Context), keywordsJSON)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateID(c.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetCluster retrieves a cluster by id.
func GetCluster(db *sql.DB, id string) (*item.Cluster, error) {
	query := "SELECT id, items_json, created_at, context, keywords_json FROM clusters WHERE id = ?"

	var (
		c            item.Cluster
		itemsJSON    string
		context      sql.NullString
		keywordsJSON sql.NullString
	)
	err := db.QueryRow(query, id).Scan(&c.ID, &itemsJSON, &c.CreatedAt, &context, &keywordsJSON)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &c.Items); err != nil {
		return nil, errors.NewInternal(err)
	}
	c.Context = fromNullString(context)
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &c.Keywords); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	return &c, nil
}

// AppendClusterItem appends an item id to a cluster's ordered member list.
// The list is append-only; members are never removed.
func AppendClusterItem(db *sql.DB, clusterID, itemID string) error {
	c, err := GetCluster(db, clusterID)
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(append(c.Items, itemID))
	if err != nil {
		return errors.NewInternal(err)
	}

	result, err := db.Exec("UPDATE clusters SET items_json = ? WHERE id = ?", string(itemsJSON), clusterID)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(clusterID)
	}
	return nil
}

// ListClusters returns all clusters in creation order.
func ListClusters(db *sql.DB) ([]*item.Cluster, error) {
	rows, err := db.Query("SELECT id FROM clusters ORDER BY created_at ASC")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	clusters := make([]*item.Cluster, 0, len(ids))
	for _, id := range ids {
		c, err := GetCluster(db, id)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}
	return clusters, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func fromNullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}

func toNullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat64(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
