package handlers

import (
	"net/http"
	"testing"
)

func TestGetPatient(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/patient", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	body := decode[map[string]any](t, rr)
	record, _ := body["patient"].(map[string]any)
	profile, _ := record["profile"].(map[string]any)
	if profile["name"] != "Jane Doe" {
		t.Errorf("unexpected patient profile %v", profile)
	}
	if _, ok := body["abnormalLabs"].([]any); !ok {
		t.Errorf("expected abnormalLabs list, got %v", body["abnormalLabs"])
	}
}

func TestToggleBookmark(t *testing.T) {
	env := newTestEnv(t, nil)

	type toggleBody struct {
		ID         string `json:"id"`
		Bookmarked bool   `json:"bookmarked"`
	}

	first := decode[toggleBody](t, env.do(t, http.MethodPut, "/bookmarks/warfarin", ""))
	if first.ID != "warfarin" || !first.Bookmarked {
		t.Errorf("first toggle should bookmark, got %+v", first)
	}

	list := decode[struct {
		IDs         []string         `json:"ids"`
		Medications []medicationBody `json:"medications"`
	}](t, env.do(t, http.MethodGet, "/bookmarks", ""))
	if len(list.IDs) != 1 || list.IDs[0] != "warfarin" || len(list.Medications) != 1 {
		t.Errorf("unexpected bookmark list %+v", list)
	}

	second := decode[toggleBody](t, env.do(t, http.MethodPut, "/bookmarks/warfarin", ""))
	if second.Bookmarked {
		t.Error("second toggle should remove the bookmark")
	}

	if rr := env.do(t, http.MethodPut, "/bookmarks/unknown", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown medication, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPut, "/bookmarks/NOPE", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rr.Code)
	}
}

func TestTheme(t *testing.T) {
	env := newTestEnv(t, nil)

	type themeResponse struct {
		Theme string `json:"theme"`
	}

	if got := decode[themeResponse](t, env.do(t, http.MethodGet, "/preferences/theme", "")); got.Theme != "dark" {
		t.Errorf("expected dark default, got %q", got.Theme)
	}

	if got := decode[themeResponse](t, env.do(t, http.MethodPost, "/preferences/theme/toggle", "")); got.Theme != "light" {
		t.Errorf("expected toggle to light, got %q", got.Theme)
	}

	rr := env.do(t, http.MethodPut, "/preferences/theme", `{"theme":"dark"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[themeResponse](t, env.do(t, http.MethodGet, "/preferences/theme", "")); got.Theme != "dark" {
		t.Errorf("expected dark after set, got %q", got.Theme)
	}

	for _, body := range []string{`{"theme":"sepia"}`, `not json`} {
		if rr := env.do(t, http.MethodPut, "/preferences/theme", body); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}
