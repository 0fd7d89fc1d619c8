package db

import (
	"database/sql"
	"encoding/json"

	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
)

// InsertFocusSession stores a new focus session.
func InsertFocusSession(db *sql.DB, fs *item.FocusSession) error {
	query := `
		INSERT INTO focus_sessions (id, item_id, duration, type, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, fs.ID, toNullString(fs.ItemID), fs.Duration,
		string(fs.Type), fs.StartedAt, toNullInt64(fs.CompletedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateID(fs.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetFocusSession retrieves a focus session by id.
func GetFocusSession(db *sql.DB, id string) (*item.FocusSession, error) {
	query := "SELECT id, item_id, duration, type, started_at, completed_at FROM focus_sessions WHERE id = ?"

	var (
		fs          item.FocusSession
		itemID      sql.NullString
		typ         string
		completedAt sql.NullInt64
	)
	err := db.QueryRow(query, id).Scan(&fs.ID, &itemID, &fs.Duration, &typ, &fs.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	fs.ItemID = fromNullString(itemID)
	fs.Type = item.FocusSessionType(typ)
	fs.CompletedAt = fromNullInt64(completedAt)
	return &fs, nil
}

// CompleteFocusSession stamps completed_at on an open session.
func CompleteFocusSession(db *sql.DB, id string, completedAt int64) error {
	result, err := db.Exec("UPDATE focus_sessions SET completed_at = ? WHERE id = ?", completedAt, id)
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

// InsertReflection stores a new reflection entry.
func InsertReflection(db *sql.DB, r *item.Reflection) error {
	anchorsJSON, err := marshalTags(r.AnchorIDs)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO reflections (id, date, content, items_processed, items_completed, anchors_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query, r.ID, r.Date, r.Content, r.ItemsProcessed, r.ItemsCompleted, anchorsJSON)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateID(r.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListReflections returns reflections in date order, newest first.
func ListReflections(db *sql.DB) ([]*item.Reflection, error) {
	query := "SELECT id, date, content, items_processed, items_completed, anchors_json FROM reflections ORDER BY date DESC"
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	reflections := make([]*item.Reflection, 0)
	for rows.Next() {
		var (
			r           item.Reflection
			anchorsJSON sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Date, &r.Content, &r.ItemsProcessed, &r.ItemsCompleted, &anchorsJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		if anchorsJSON.Valid && anchorsJSON.String != "" {
			if err := json.Unmarshal([]byte(anchorsJSON.String), &r.AnchorIDs); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		reflections = append(reflections, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return reflections, nil
}
