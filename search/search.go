package search

import (
	"context"
	"database/sql"
	"time"
)

// Variants recorded in the history
const (
	VariantDataset = "dataset"
	VariantIndex   = "index"
)

// Entry is one executed search
type Entry struct {
	ID          int       `json:"id"`
	Variant     string    `json:"variant"`
	QueryString string    `json:"query"`
	Country     string    `json:"country,omitempty"`
	ResultCount int       `json:"resultCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TopSearch is a popular query with its count
type TopSearch struct {
	QueryString string `json:"query"`
	Count       int    `json:"count"`
}

// Recorder stores executed searches
type Recorder interface {
	Save(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Top(ctx context.Context, limit int) ([]TopSearch, error)
	Enabled() bool
}

// History records searches in the SearchHistory table
type History struct {
	db *sql.DB
}

// NewHistory creates a recorder on an open database
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Save inserts a search entry
func (h *History) Save(ctx context.Context, e Entry) error {
	_, err := h.db.ExecContext(ctx,
		"INSERT INTO SearchHistory (variant, query_string, country, result_count) VALUES (?, ?, ?, ?)",
		e.Variant, e.QueryString, e.Country, e.ResultCount)
	return err
}

// Recent returns the latest searches, newest first
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT id, variant, query_string, country, result_count, created_at FROM SearchHistory ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Variant, &e.QueryString, &e.Country, &e.ResultCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Top returns the most frequent queries
func (h *History) Top(ctx context.Context, limit int) ([]TopSearch, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT query_string, COUNT(*) AS count FROM SearchHistory WHERE query_string != '' GROUP BY query_string ORDER BY count DESC, query_string LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []TopSearch{}
	for rows.Next() {
		var s TopSearch
		if err := rows.Scan(&s.QueryString, &s.Count); err != nil {
			return nil, err
		}
		top = append(top, s)
	}
	return top, rows.Err()
}

func (h *History) Enabled() bool { return true }

// Nop discards everything; used when no history database is configured
type Nop struct{}

func (Nop) Save(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

func (Nop) Top(context.Context, int) ([]TopSearch, error) { return []TopSearch{}, nil }

func (Nop) Enabled() bool { return false }
