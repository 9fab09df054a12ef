// Package history records instruction lines that were checked or run.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// History manages instruction history storage and retrieval.
type History struct {
	path       string
	fs         afero.Fs
	entries    []*Entry
	maxEntries int
	mu         sync.RWMutex
	now        func() time.Time
}

// Entry is one recorded line.
type Entry struct {
	ID        int       `json:"id"`
	Line      string    `json:"line"`
	Mode      string    `json:"mode"`
	Commands  []string  `json:"commands,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// Error is the error kind of a failed line, empty on success.
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Success    bool   `json:"success"`
}

// Data is the structure of the history file.
type Data struct {
	History    []*Entry `json:"history"`
	MaxEntries int      `json:"max_entries"`
	Version    string   `json:"version,omitempty"`
}

const (
	// DefaultMaxEntries is the default maximum number of entries.
	DefaultMaxEntries = 1000

	// Version is the current history file format version.
	Version = "1.0"
)

// Path returns the default history file of appName.
func Path(appName string) string {
	return filepath.Join(xdg.StateHome, appName, "history.json")
}

// New loads the history file at path from fs. A missing file yields an
// empty history.
func New(fs afero.Fs, path string, maxEntries int) (*History, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	h := &History{
		path:       path,
		fs:         fs,
		entries:    make([]*Entry, 0),
		maxEntries: maxEntries,
		now:        time.Now,
	}
	if err := h.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return h, nil
}

// Load reads the history file.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := afero.ReadFile(h.fs, h.path)
	if err != nil {
		return err
	}

	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to parse history file: %w", err)
	}
	h.entries = d.History
	if d.MaxEntries > 0 {
		h.maxEntries = d.MaxEntries
	}
	h.renumber()
	return nil
}

// Save writes the history file atomically.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(Data{
		History:    h.entries,
		MaxEntries: h.maxEntries,
		Version:    Version,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := afero.WriteFile(h.fs, tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := h.fs.Rename(tmp, h.path); err != nil {
		_ = h.fs.Remove(tmp)
		return fmt.Errorf("failed to save history file: %w", err)
	}
	return nil
}

// Add appends an entry, assigning its ID and timestamp, and drops the
// oldest entries beyond the limit.
func (h *History) Add(e *Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e.ID = 1
	if n := len(h.entries); n > 0 {
		e.ID = h.entries[n-1].ID + 1
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = h.now()
	}
	e.Success = e.Error == ""

	h.entries = append(h.entries, e)
	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[len(h.entries)-h.maxEntries:]
		h.renumber()
	}
}

// Record adds an entry and saves the file.
func (h *History) Record(e *Entry) error {
	h.Add(e)
	return h.Save()
}

func (h *History) renumber() {
	for i, e := range h.entries {
		e.ID = i + 1
	}
}

// Get returns the entry with id.
func (h *History) Get(id int) (*Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range h.entries {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, fmt.Errorf("history entry %d not found", id)
}

// Recent returns the last n entries, or all of them when n <= 0.
func (h *History) Recent(n int) []*Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]*Entry, n)
	for i, e := range h.entries[len(h.entries)-n:] {
		c := *e
		out[i] = &c
	}
	return out
}

// Search returns entries whose line contains pattern, ignoring case.
func (h *History) Search(pattern string) []*Entry {
	pattern = strings.ToLower(pattern)
	return h.Filter(func(e *Entry) bool {
		return strings.Contains(strings.ToLower(e.Line), pattern)
	})
}

// Filter returns copies of the entries matching fn.
func (h *History) Filter(fn func(*Entry) bool) []*Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matches := make([]*Entry, 0)
	for _, e := range h.entries {
		if fn(e) {
			c := *e
			matches = append(matches, &c)
		}
	}
	return matches
}

// Failed returns the entries that did not verify or run.
func (h *History) Failed() []*Entry {
	return h.Filter(func(e *Entry) bool { return !e.Success })
}

// Clear removes every entry. Call Save to persist.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]*Entry, 0)
}

// Count returns the number of entries.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Stats summarizes the history.
type Stats struct {
	Total             int       `json:"total" yaml:"total"`
	Successful        int       `json:"successful" yaml:"successful"`
	Failed            int       `json:"failed" yaml:"failed"`
	AverageDurationMS int64     `json:"average_duration_ms" yaml:"average_duration_ms"`
	First             time.Time `json:"first" yaml:"first"`
	Last              time.Time `json:"last" yaml:"last"`
}

// Stats returns statistics about the history.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{Total: len(h.entries)}
	if stats.Total == 0 {
		return stats
	}

	var total int64
	for _, e := range h.entries {
		if e.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		total += e.DurationMS
		if stats.First.IsZero() || e.Timestamp.Before(stats.First) {
			stats.First = e.Timestamp
		}
		if e.Timestamp.After(stats.Last) {
			stats.Last = e.Timestamp
		}
	}
	stats.AverageDurationMS = total / int64(stats.Total)
	return stats
}

// Frequency counts how often a command appeared.
type Frequency struct {
	Command string `json:"command" yaml:"command"`
	Count   int    `json:"count" yaml:"count"`
}

// MostUsed returns the most frequent commands across successful entries,
// ties broken by name.
func (h *History) MostUsed(limit int) []Frequency {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range h.entries {
		if !e.Success {
			continue
		}
		for _, name := range e.Commands {
			counts[name]++
		}
	}

	freqs := make([]Frequency, 0, len(counts))
	for name, n := range counts {
		freqs = append(freqs, Frequency{Command: name, Count: n})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Command < freqs[j].Command
	})
	if limit > 0 && limit < len(freqs) {
		freqs = freqs[:limit]
	}
	return freqs
}
