package ops

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/export"
)

// ExportOutput contains the result of a file-producing export.
type ExportOutput struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// ExportContact writes a contact item as a .vcf file into exportsDir.
func ExportContact(database *sql.DB, exportsDir, id string) (*ExportOutput, error) {
	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}

	vcard := export.VCard(it)
	if vcard == "" {
		return nil, errors.NewInvalidRequest("item is not a contact")
	}

	name := "contact"
	if it.ContactName != nil && *it.ContactName != "" {
		name = sanitizeFilename(*it.ContactName)
	}
	path := filepath.Join(exportsDir, name+".vcf")

	if err := os.WriteFile(path, []byte(vcard), 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{ID: id, Path: path}, nil
}

// ExportEvent writes an event item as a .ics file into exportsDir.
func ExportEvent(database *sql.DB, exportsDir, id string) (*ExportOutput, error) {
	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}

	ics := export.ICalendar(it)
	if ics == "" {
		return nil, errors.NewInvalidRequest("item is not an event with a date")
	}

	path := filepath.Join(exportsDir, "event-"+id+".ics")
	if err := os.WriteFile(path, []byte(ics), 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{ID: id, Path: path}, nil
}

// LinksOutput bundles the URI-style exports for an item. Fields are empty
// when the item's category or payload doesn't support them.
type LinksOutput struct {
	ID          string `json:"id"`
	CalendarURL string `json:"calendar_url,omitempty"`
	Tel         string `json:"tel,omitempty"`
	SMS         string `json:"sms,omitempty"`
	Mail        string `json:"mail,omitempty"`
}

// Links builds the calendar quick-add URL and tel/sms/mailto URIs for an
// item. Mismatched categories simply leave fields empty; this is not an
// error.
func Links(database *sql.DB, id string) (*LinksOutput, error) {
	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}

	return &LinksOutput{
		ID:          id,
		CalendarURL: export.CalendarURL(it),
		Tel:         export.TelLink(it),
		SMS:         export.SMSLink(it),
		Mail:        export.MailLink(it),
	}, nil
}

// sanitizeFilename strips path separators and whitespace runs from a
// user-supplied name so it is safe as a bare file name.
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "-")
	if name == "" || name == "." || name == ".." {
		return "contact"
	}
	return name
}
