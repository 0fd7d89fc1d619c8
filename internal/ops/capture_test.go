package ops

import (
	"database/sql"
	"testing"
	"time"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/db"
	"github.com/JesseBremer/flow-lyfe/internal/item"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// setClock pins the ops clock to a fixed time for the duration of a test.
func setClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func TestCapture_Defaults(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()

	it, err := Capture(database, cfg, nil, CaptureInput{Content: "buy milk"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if it == nil {
		t.Fatal("Capture returned nil item")
	}

	if it.Status != item.StatusInbox {
		t.Errorf("Status = %q, want inbox", it.Status)
	}
	if it.Category != item.CategoryUncategorized {
		t.Errorf("Category = %q, want uncategorized", it.Category)
	}
	if it.Type != item.TypeText {
		t.Errorf("Type = %q, want text", it.Type)
	}
	if it.SurfaceCount != 0 {
		t.Errorf("SurfaceCount = %d, want 0", it.SurfaceCount)
	}
	if it.Temperature != 0 {
		t.Errorf("Temperature = %d, want 0", it.Temperature)
	}
	if it.IsAnchor {
		t.Error("IsAnchor = true, want false")
	}

	// Persisted, not just returned
	got, err := Get(database, it.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != "buy milk" {
		t.Errorf("Content = %q, want %q", got.Content, "buy milk")
	}
}

func TestCapture_BlankIsSilentSkip(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()

	for _, content := range []string{"", "   ", "\n\t "} {
		it, err := Capture(database, cfg, nil, CaptureInput{Content: content})
		if err != nil {
			t.Errorf("Capture(%q) error = %v, want nil", content, err)
		}
		if it != nil {
			t.Errorf("Capture(%q) = %+v, want nil (silent skip)", content, it)
		}
	}

	items, err := ListByStatus(database, item.StatusInbox)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestCapture_TrimsContent(t *testing.T) {
	database := testDB(t)

	it, err := Capture(database, config.DefaultConfig(), nil, CaptureInput{Content: "  note  \n"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if it.Content != "note" {
		t.Errorf("Content = %q, want %q", it.Content, "note")
	}
}

func TestCapture_EnergyByHour(t *testing.T) {
	tests := []struct {
		hour int
		want item.Energy
	}{
		{8, item.EnergyHigh},
		{14, item.EnergyMedium},
		{22, item.EnergyLow},
		{3, item.EnergyLow},
	}

	for _, tt := range tests {
		database := testDB(t)
		setClock(t, time.Date(2025, 6, 1, tt.hour, 30, 0, 0, time.Local))

		it, err := Capture(database, config.DefaultConfig(), nil, CaptureInput{Content: "x"})
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if it.Energy != tt.want {
			t.Errorf("hour %d: Energy = %q, want %q", tt.hour, it.Energy, tt.want)
		}
	}
}

func TestCapture_InvalidType(t *testing.T) {
	database := testDB(t)

	_, err := Capture(database, config.DefaultConfig(), nil, CaptureInput{Content: "x", Type: "telegram"})
	if err == nil {
		t.Error("Capture with unknown type should fail")
	}
}

func TestCapture_TriggersClustering(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()
	setClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local))

	first, err := Capture(database, cfg, nil, CaptureInput{Content: "first"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Second capture lands inside the window and must cluster with the first
	second, err := Capture(database, cfg, nil, CaptureInput{Content: "second"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if second.ClusterID == nil {
		t.Fatal("second item not clustered")
	}

	firstAgain, err := Get(database, first.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if firstAgain.ClusterID == nil || *firstAgain.ClusterID != *second.ClusterID {
		t.Errorf("first ClusterID = %v, want %v", firstAgain.ClusterID, *second.ClusterID)
	}
}
