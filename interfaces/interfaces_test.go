package interfaces

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/giygas/mymedic-api/catalog"
	"github.com/giygas/mymedic-api/catalog/entities"
	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/store"
)

// MockDataStore implements DataStore interface for testing
type MockDataStore struct {
	catalog   *catalog.Catalog
	index     *interactions.Index
	loadedAt  time.Time
	startedAt time.Time
}

func newMockDataStore(t *testing.T) *MockDataStore {
	t.Helper()

	meds := []entities.Medication{
		{ID: "warfarin", GenericName: "Warfarin", BrandNames: []string{"Coumadin"}},
		{ID: "aspirin", GenericName: "Aspirin", BrandNames: []string{"Bayer"}},
		{ID: "omeprazole", GenericName: "Omeprazole", BrandNames: []string{"Prilosec"}},
	}
	cat, err := catalog.New(meds)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}

	rows := []interactions.CorpusRow{
		{Drug1: "Warfarin (Coumadin®)", Drug2: "Aspirin", Effect: "Increased bleeding risk"},
	}
	idx, _ := interactions.BuildIndex(rows, interactions.NewNameResolver(cat.All()))

	return &MockDataStore{
		catalog:   cat,
		index:     idx,
		loadedAt:  time.Now(),
		startedAt: time.Now().Add(-time.Hour),
	}
}

func (m *MockDataStore) Catalog() *catalog.Catalog { return m.catalog }
func (m *MockDataStore) Index() *interactions.Index { return m.index }
func (m *MockDataStore) LoadedAt() time.Time { return m.loadedAt }
func (m *MockDataStore) GetServerStartTime() time.Time { return m.startedAt }

func (m *MockDataStore) Stats() LoadStats {
	return LoadStats{Medications: m.catalog.Len(), Pairs: m.index.Len()}
}

// MockPreferenceStore keeps preferences in memory and can be told to fail.
type MockPreferenceStore struct {
	bookmarks  map[string]bool
	theme      store.Theme
	shouldFail bool
}

func newMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{bookmarks: make(map[string]bool), theme: store.DefaultTheme}
}

func (m *MockPreferenceStore) Bookmarks() []string {
	ids := make([]string, 0, len(m.bookmarks))
	for id := range m.bookmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MockPreferenceStore) BookmarkSet() map[string]bool {
	set := make(map[string]bool, len(m.bookmarks))
	for id := range m.bookmarks {
		set[id] = true
	}
	return set
}

func (m *MockPreferenceStore) IsBookmarked(id string) bool {
	return m.bookmarks[id]
}

func (m *MockPreferenceStore) ToggleBookmark(_ context.Context, id string) (bool, error) {
	if m.shouldFail {
		return false, errMock
	}
	if m.bookmarks[id] {
		delete(m.bookmarks, id)
		return false, nil
	}
	m.bookmarks[id] = true
	return true, nil
}

func (m *MockPreferenceStore) Theme() store.Theme {
	return m.theme
}

func (m *MockPreferenceStore) SetTheme(_ context.Context, theme store.Theme) error {
	if m.shouldFail {
		return errMock
	}
	if _, err := store.ParseTheme(string(theme)); err != nil {
		return err
	}
	m.theme = theme
	return nil
}

func (m *MockPreferenceStore) ToggleTheme(ctx context.Context) (store.Theme, error) {
	next := store.ThemeLight
	if m.theme == store.ThemeLight {
		next = store.ThemeDark
	}
	if err := m.SetTheme(ctx, next); err != nil {
		return m.theme, err
	}
	return next, nil
}

// MockPinger implements Pinger interface for testing
type MockPinger struct {
	err error
}

func (m *MockPinger) Ping(_ context.Context) error {
	return m.err
}

// MockScheduler implements Scheduler interface for testing
type MockScheduler struct {
	started bool
	stopped bool
}

func (m *MockScheduler) Start() error {
	if m.started {
		return errors.New("already started")
	}
	m.started = true
	return nil
}

func (m *MockScheduler) Stop() {
	m.stopped = true
}

// MockHealthChecker derives its status from a data store and a pinger.
type MockHealthChecker struct {
	data DataStore
	db   Pinger
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) (string, map[string]any, int) {
	details := map[string]any{"medications": m.data.Catalog().Len()}
	if err := m.db.Ping(ctx); err != nil {
		return "unhealthy", details, 503
	}
	return "healthy", details, 200
}

var errMock = errors.New("mock failure")

func TestDataStoreInterface(t *testing.T) {
	var ds DataStore = newMockDataStore(t)

	if ds.Catalog().Len() != 3 {
		t.Errorf("Expected 3 medications, got %d", ds.Catalog().Len())
	}
	if _, ok := ds.Index().Lookup("aspirin", "warfarin"); !ok {
		t.Error("Expected the brand-qualified corpus row to resolve to warfarin")
	}
	if stats := ds.Stats(); stats.Pairs != 1 {
		t.Errorf("Expected 1 pair, got %d", stats.Pairs)
	}
	if !ds.GetServerStartTime().Before(ds.LoadedAt()) {
		t.Error("Expected server start time before load time")
	}
}

func TestPreferenceStoreInterface(t *testing.T) {
	ctx := context.Background()
	var prefs PreferenceStore = newMockPreferenceStore()

	on, err := prefs.ToggleBookmark(ctx, "warfarin")
	if err != nil || !on {
		t.Fatalf("Expected bookmark on, got %v, %v", on, err)
	}
	if !prefs.IsBookmarked("warfarin") {
		t.Error("warfarin should be bookmarked")
	}
	on, _ = prefs.ToggleBookmark(ctx, "warfarin")
	if on || len(prefs.Bookmarks()) != 0 {
		t.Error("Expected bookmark removed")
	}

	theme, err := prefs.ToggleTheme(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if theme != store.ThemeLight {
		t.Errorf("Expected light after toggling the default, got %s", theme)
	}

	if err := prefs.SetTheme(ctx, "sepia"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("Expected ErrInvalidTheme, got %v", err)
	}
}

func TestPreferenceStoreFailure(t *testing.T) {
	prefs := newMockPreferenceStore()
	prefs.shouldFail = true

	if _, err := prefs.ToggleBookmark(context.Background(), "warfarin"); err == nil {
		t.Error("Expected error but got none")
	}
	theme, err := prefs.ToggleTheme(context.Background())
	if err == nil {
		t.Error("Expected error but got none")
	}
	if theme != store.DefaultTheme {
		t.Errorf("Failed toggle must keep the theme, got %s", theme)
	}
}

func TestSchedulerInterface(t *testing.T) {
	scheduler := &MockScheduler{}

	if err := scheduler.Start(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if !scheduler.started {
		t.Error("Scheduler should be started")
	}
	if err := scheduler.Start(); err == nil {
		t.Error("Second start should fail")
	}

	scheduler.Stop()
	if !scheduler.stopped {
		t.Error("Scheduler should be stopped")
	}
}

func TestHealthCheckerInterface(t *testing.T) {
	ds := newMockDataStore(t)

	tests := []struct {
		name           string
		pingErr        error
		expectedStatus string
		expectedCode   int
	}{
		{"reachable store", nil, "healthy", 200},
		{"unreachable store", errMock, "unhealthy", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checker HealthChecker = &MockHealthChecker{data: ds, db: &MockPinger{err: tt.pingErr}}

			status, details, code := checker.HealthCheck(context.Background())
			if status != tt.expectedStatus || code != tt.expectedCode {
				t.Errorf("Expected %s/%d, got %s/%d", tt.expectedStatus, tt.expectedCode, status, code)
			}
			if details["medications"] != 3 {
				t.Errorf("Expected 3 medications in details, got %v", details["medications"])
			}
		})
	}
}

// Compile-time checks to ensure our implementations implement the interfaces
func TestCompileTimeChecks(t *testing.T) {
	// These will fail to compile if the implementations don't match the interfaces
	var _ DataStore = (*MockDataStore)(nil)
	var _ PreferenceStore = (*MockPreferenceStore)(nil)
	var _ PreferenceStore = (*store.Preferences)(nil)
	var _ Pinger = (*MockPinger)(nil)
	var _ Pinger = (*store.Store)(nil)
	var _ Scheduler = (*MockScheduler)(nil)
	var _ HealthChecker = (*MockHealthChecker)(nil)
}
