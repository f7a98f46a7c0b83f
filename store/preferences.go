package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/giygas/mymedic-api/logging"
)

const (
	BookmarksKey = "MyMedic-bookmarks"
	ThemeKey     = "MyMedic-theme"
)

// Theme is the colour scheme of the client.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme applies until the user picks one.
const DefaultTheme = ThemeDark

// ErrInvalidTheme is returned by SetTheme for values other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidTheme)
	}
}

// Preferences keeps bookmarks and theme in memory and writes them through
// to the store on every change.
type Preferences struct {
	kv *Store

	mu        sync.RWMutex
	bookmarks map[string]bool
	theme     Theme
}

// NewPreferences loads both keys once. Missing or unreadable values fall
// back to their defaults.
func NewPreferences(ctx context.Context, kv *Store) (*Preferences, error) {
	p := &Preferences{
		kv:        kv,
		bookmarks: make(map[string]bool),
		theme:     DefaultTheme,
	}

	raw, err := kv.Get(ctx, BookmarksKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			logging.Warn("Stored bookmarks are corrupt, starting empty", "error", err)
		} else {
			for _, id := range ids {
				p.bookmarks[id] = true
			}
		}
	}

	raw, err = kv.Get(ctx, ThemeKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if theme, err := ParseTheme(raw); err == nil {
			p.theme = theme
		} else {
			logging.Warn("Stored theme is invalid, using default", "value", raw, "default", DefaultTheme)
		}
	}

	return p, nil
}

// Bookmarks returns the bookmarked identifiers in sorted order.
func (p *Preferences) Bookmarks() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sortedBookmarks()
}

func (p *Preferences) sortedBookmarks() []string {
	ids := make([]string, 0, len(p.bookmarks))
	for id := range p.bookmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Preferences) IsBookmarked(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bookmarks[id]
}

// BookmarkSet returns a copy of the bookmarked identifiers as a set.
func (p *Preferences) BookmarkSet() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := make(map[string]bool, len(p.bookmarks))
	for id := range p.bookmarks {
		set[id] = true
	}
	return set
}

// ToggleBookmark adds or removes id and reports whether it is now
// bookmarked. The in-memory state is left unchanged when the write fails.
func (p *Preferences) ToggleBookmark(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := !p.bookmarks[id]
	if now {
		p.bookmarks[id] = true
	} else {
		delete(p.bookmarks, id)
	}

	raw, err := json.Marshal(p.sortedBookmarks())
	if err == nil {
		err = p.kv.Set(ctx, BookmarksKey, string(raw))
	}
	if err != nil {
		if now {
			delete(p.bookmarks, id)
		} else {
			p.bookmarks[id] = true
		}
		return !now, err
	}

	return now, nil
}

func (p *Preferences) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// SetTheme persists theme. Invalid values return ErrInvalidTheme.
func (p *Preferences) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setThemeLocked(ctx, theme)
}

// ToggleTheme switches between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context) (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := ThemeDark
	if p.theme == ThemeDark {
		next = ThemeLight
	}
	if err := p.setThemeLocked(ctx, next); err != nil {
		return p.theme, err
	}
	return next, nil
}

func (p *Preferences) setThemeLocked(ctx context.Context, theme Theme) error {
	if err := p.kv.Set(ctx, ThemeKey, string(theme)); err != nil {
		return err
	}
	p.theme = theme
	return nil
}
