package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/mymedic-api/assistant"
	"github.com/giygas/mymedic-api/config"
	"github.com/giygas/mymedic-api/data"
	"github.com/giygas/mymedic-api/handlers"
	"github.com/giygas/mymedic-api/health"
	"github.com/giygas/mymedic-api/server"
	"github.com/giygas/mymedic-api/store"
	"github.com/giygas/mymedic-api/validation"
)

// scriptedStreamer answers every message with the same fragments.
type scriptedStreamer struct {
	fragments []string
}

func (s *scriptedStreamer) SendMessageStream(ctx context.Context, history []assistant.Turn, text string) (<-chan assistant.Fragment, error) {
	out := make(chan assistant.Fragment, len(s.fragments))
	for _, f := range s.fragments {
		out <- assistant.Fragment{Text: f}
	}
	close(out)
	return out, nil
}

// startTestServer wires the same components as the serve command on top of
// a temporary data directory and returns the base URL.
func startTestServer(t *testing.T, dataDir string) string {
	t.Helper()

	dc, err := data.Load("")
	if err != nil {
		t.Fatalf("data.Load failed: %v", err)
	}
	dc.SetServerStartTime(time.Now())

	kv, err := store.Open(dataDir)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	prefs, err := store.NewPreferences(context.Background(), kv)
	if err != nil {
		t.Fatalf("NewPreferences failed: %v", err)
	}
	sessions, err := assistant.NewSessions(16)
	if err != nil {
		t.Fatalf("NewSessions failed: %v", err)
	}

	cfg := &config.Config{
		Port:             "0",
		Address:          "127.0.0.1",
		Env:              config.EnvTest,
		MaxRequestBody:   1024 * 1024,
		MaxHeaderSize:    1024 * 1024,
		AssistantTimeout: time.Minute,
	}
	handler := handlers.NewHTTPHandler(handlers.Dependencies{
		DataStore:   dc,
		Validator:   validation.NewDataValidator(),
		Preferences: prefs,
		Health:      health.NewHealthChecker(dc, kv, nil, sessions),
		Streamer:    &scriptedStreamer{fragments: []string{"Take it ", "with food."}},
		Sessions:    sessions,
	})

	ts := httptest.NewServer(server.NewServer(cfg, handler).Router())
	t.Cleanup(func() {
		ts.Close()
		kv.Close()
	})
	return ts.URL
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestIntegrationReferenceData(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	base := startTestServer(t, t.TempDir())

	var healthResp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if code := doJSON(t, http.MethodGet, base+"/health", "", &healthResp); code != http.StatusOK {
		t.Fatalf("health returned %d", code)
	}
	if healthResp.Status != "healthy" {
		t.Errorf("expected healthy, got %s (%v)", healthResp.Status, healthResp.Data)
	}

	var meds []map[string]any
	if code := doJSON(t, http.MethodGet, base+"/medications?q=statin", "", &meds); code != http.StatusOK {
		t.Fatalf("search returned %d", code)
	}
	if len(meds) != 2 {
		t.Errorf("expected 2 statins, got %d", len(meds))
	}

	var result struct {
		Severity string   `json:"severity"`
		Summary  string   `json:"summary"`
		Details  []string `json:"details"`
	}
	code := doJSON(t, http.MethodPost, base+"/interactions/check",
		`{"medicationIds":["warfarin","acetaminophen"]}`, &result)
	if code != http.StatusOK {
		t.Fatalf("interaction check returned %d", code)
	}
	if result.Severity != "Moderate" {
		t.Errorf("expected Moderate, got %s", result.Severity)
	}
	if result.Summary != "1 interaction(s) found. Highest severity: Moderate." {
		t.Errorf("unexpected summary %q", result.Summary)
	}

	code = doJSON(t, http.MethodGet, base+"/interactions?ids=amiodarone,ciprofloxacin,warfarin", "", &result)
	if code != http.StatusOK {
		t.Fatalf("interaction query returned %d", code)
	}
	if result.Severity != "Critical" {
		t.Errorf("expected Critical, got %s", result.Severity)
	}

	var errResp map[string]any
	if code := doJSON(t, http.MethodGet, base+"/medications/unobtainium", "", &errResp); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown medication, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, base+"/no-such-route", "", &errResp); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", code)
	}
	if errResp["message"] != "Route not found" {
		t.Errorf("unexpected not found body %v", errResp)
	}
}

func TestIntegrationPreferencesPersist(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir := t.TempDir()

	func() {
		base := startTestServer(t, dir)

		var toggled map[string]any
		if code := doJSON(t, http.MethodPut, base+"/bookmarks/warfarin", "", &toggled); code != http.StatusOK {
			t.Fatalf("bookmark toggle returned %d", code)
		}
		if toggled["bookmarked"] != true {
			t.Fatalf("expected warfarin bookmarked, got %v", toggled)
		}

		var theme map[string]string
		if code := doJSON(t, http.MethodPost, base+"/preferences/theme/toggle", "", &theme); code != http.StatusOK {
			t.Fatalf("theme toggle returned %d", code)
		}
		if theme["theme"] != "light" {
			t.Fatalf("expected light, got %v", theme)
		}
	}()

	// A second process on the same data directory sees the saved state.
	base := startTestServer(t, dir)

	var bookmarks struct {
		IDs []string `json:"ids"`
	}
	if code := doJSON(t, http.MethodGet, base+"/bookmarks", "", &bookmarks); code != http.StatusOK {
		t.Fatalf("bookmarks returned %d", code)
	}
	if len(bookmarks.IDs) != 1 || bookmarks.IDs[0] != "warfarin" {
		t.Errorf("expected [warfarin], got %v", bookmarks.IDs)
	}

	var theme map[string]string
	doJSON(t, http.MethodGet, base+"/preferences/theme", "", &theme)
	if theme["theme"] != "light" {
		t.Errorf("expected persisted light theme, got %v", theme)
	}
}

func TestIntegrationAssistantStream(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	base := startTestServer(t, t.TempDir())

	var session struct {
		ID       string              `json:"id"`
		Messages []assistant.Message `json:"messages"`
	}
	if code := doJSON(t, http.MethodPost, base+"/assistant/sessions", "", &session); code != http.StatusCreated {
		t.Fatalf("create session returned %d", code)
	}

	resp, err := http.Post(base+"/assistant/sessions/"+session.ID+"/messages",
		"application/json", strings.NewReader(`{"text":"Can I take ibuprofen?"}`))
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %q", ct)
	}

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}
	expected := []string{"fragment", "fragment", "done"}
	if fmt.Sprint(events) != fmt.Sprint(expected) {
		t.Errorf("expected events %v, got %v", expected, events)
	}

	if code := doJSON(t, http.MethodGet, base+"/assistant/sessions/"+session.ID, "", &session); code != http.StatusOK {
		t.Fatalf("get session returned %d", code)
	}
	if len(session.Messages) != 3 {
		t.Fatalf("expected greeting, question and reply, got %d messages", len(session.Messages))
	}
	if reply := session.Messages[2]; reply.Text != "Take it with food." || reply.Sender != assistant.SenderAI {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestIntegrationConcurrentChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	base := startTestServer(t, t.TempDir())

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(base + "/interactions?ids=amiodarone,ciprofloxacin")
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()

			var result struct {
				Severity string `json:"severity"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				errs <- err
				return
			}
			if result.Severity != "Critical" {
				errs <- fmt.Errorf("expected Critical, got %s", result.Severity)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
