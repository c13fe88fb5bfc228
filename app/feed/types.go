package feed

import (
	"time"
)

type Metadata struct {
	Title    string
	Link     string
	Language string
	Updated  *time.Time
}

type Entry struct {
	GUID        string
	Title       string
	Link        string
	PublishedAt *time.Time
}

// Ignored is a feed link that is not an article candidate.
type Ignored struct {
	URL    string
	Reason string
}
