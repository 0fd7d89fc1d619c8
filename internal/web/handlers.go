package web

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
	"github.com/JesseBremer/flow-lyfe/internal/ops"
)

// statusNav is the order the lifecycle lists appear in the navigation.
var statusNav = []string{"inbox", "today", "someday", "awaiting", "archived"}

// Handlers contains HTTP route handlers for the web view.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	bus        *notify.Bus
	exportsDir string
	renderer   *Renderer
}

// HandleList handles GET /items: list items on a lifecycle list.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "inbox"
	}
	anchors := parseBoolParam(r, "anchors")

	var items []*item.Item
	var err error
	if anchors {
		items, err = ops.ListAnchors(h.db)
	} else {
		items, err = ops.ListByStatus(h.db, item.Status(status))
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	nav := status
	if anchors {
		nav = "anchors"
	}
	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   titleCase(nav),
			Version: h.renderer.version,
			Nav:     nav,
		},
		Items:    items,
		Status:   status,
		Statuses: statusNav,
		Anchors:  anchors,
	})
}

// HandleCapture handles POST /items: capture from the web form.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	_, err := ops.Capture(h.db, h.cfg, h.bus, ops.CaptureInput{
		Content: r.FormValue("content"),
		Type:    item.CaptureType(r.FormValue("type")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/items", http.StatusFound)
}

// HandleDetail handles GET /items/{id}: view a single item.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("item ID is required"))
		return
	}

	it, err := ops.Get(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	links, err := ops.Links(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var cluster *item.Cluster
	if it.ClusterID != nil {
		cluster, err = db.GetCluster(h.db, *it.ClusterID)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayTitle(it),
			Version: h.renderer.version,
			Nav:     string(it.Status),
		},
		Item:         it,
		RenderedHTML: renderMarkdown(it.Content),
		Links:        links,
		Cluster:      cluster,
	})
}

// HandleProcess handles POST /items/{id}/process: one triage step from the
// detail form.
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.ProcessInput{
		ID:            id,
		Category:      item.Category(r.FormValue("category")),
		TargetStatus:  item.Status(r.FormValue("target_status")),
		ContactName:   formPtr(r, "contact_name"),
		ContactPhone:  formPtr(r, "contact_phone"),
		ContactEmail:  formPtr(r, "contact_email"),
		EventLocation: formPtr(r, "event_location"),
		AwaitingFrom:  formPtr(r, "awaiting_from"),
		AwaitingNote:  formPtr(r, "awaiting_note"),
	}
	if v := r.FormValue("event_date"); v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("event_date must be unix seconds"))
			return
		}
		input.EventDate = &sec
	}
	if v := r.FormValue("bill_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("bill_amount must be a number"))
			return
		}
		input.BillAmount = &amount
	}

	it, err := ops.Process(h.db, h.bus, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/items/"+it.ID, http.StatusFound)
}

// HandleStatus handles POST /items/{id}/status: move an item between lists.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	it, err := ops.SetStatus(h.db, h.bus, id, item.Status(r.FormValue("status")))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/items/"+it.ID, http.StatusFound)
}

// HandleSurface handles POST /items/{id}/surface: resurface onto today.
func (h *Handlers) HandleSurface(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	it, err := ops.Surface(h.db, h.cfg, h.bus, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, it)
		return
	}
	http.Redirect(w, r, "/items/"+it.ID, http.StatusFound)
}

// HandleVCard handles GET /items/{id}/vcard: download the contact as .vcf.
func (h *Handlers) HandleVCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	out, err := ops.ExportContact(h.db, h.exportsDir, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	serveExport(w, r, h.renderer, out.Path, "text/vcard")
}

// HandleICal handles GET /items/{id}/ical: download the event as .ics.
func (h *Handlers) HandleICal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	out, err := ops.ExportEvent(h.db, h.exportsDir, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	serveExport(w, r, h.renderer, out.Path, "text/calendar")
}

// HandleCluster handles GET /clusters/{id}: view a cluster and its members.
func (h *Handlers) HandleCluster(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("cluster ID is required"))
		return
	}

	cluster, items, err := ops.ClusterItems(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "cluster", ClusterPageData{
		PageData: PageData{
			Title:   "Cluster",
			Version: h.renderer.version,
			Nav:     "clusters",
		},
		Cluster: cluster,
		Items:   items,
	})
}

// HandleReflections handles GET /reflections: the reflection journal.
func (h *Handlers) HandleReflections(w http.ResponseWriter, r *http.Request) {
	reflections, err := ops.ListReflections(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "reflections", ReflectionsPageData{
		PageData: PageData{
			Title:   "Reflections",
			Version: h.renderer.version,
			Nav:     "reflections",
		},
		Reflections: reflections,
	})
}

// HandleReflectionAdd handles POST /reflections: add a journal entry.
func (h *Handlers) HandleReflectionAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.AddReflectionInput{Content: r.FormValue("content")}
	if v := r.FormValue("items_processed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("items_processed must be an integer"))
			return
		}
		input.ItemsProcessed = n
	}
	if v := r.FormValue("items_completed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("items_completed must be an integer"))
			return
		}
		input.ItemsCompleted = n
	}

	if _, err := ops.AddReflection(h.db, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/reflections", http.StatusFound)
}

// serveExport streams a just-written export file as a download.
func serveExport(w http.ResponseWriter, r *http.Request, renderer *Renderer, path, contentType string) {
	data, err := os.ReadFile(path)
	if err != nil {
		renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// formPtr returns a pointer to the form value if non-empty, nil otherwise.
func formPtr(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

// displayTitle returns a short title for an item: the first line of its
// content, truncated.
func displayTitle(it *item.Item) string {
	line := it.Content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if len(line) > 40 {
		return line[:40] + "..."
	}
	return line
}
