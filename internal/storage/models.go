package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// BookRecord is one registered book with its last stored reading position.
type BookRecord struct {
	ID            string
	Title         string
	Author        string
	Description   string
	PageCount     int
	CurrentPage   int
	PublishedYear string
	CreatedAt     time.Time
}

// Interaction is one append-only companion log entry: which suggestion was
// shown and whether the reader engaged with it. History only; nothing reads
// these back into decision logic.
type Interaction struct {
	ID             string
	BookID         string
	SuggestionType string
	Engaged        bool
	Progress       float64
	CreatedAt      time.Time
}
