package media

import (
	"fmt"
	"path/filepath"
	"time"
)

type Kind int

const (
	Video Kind = iota
	Audio
)

// Prefix is the id prefix every stream file name of this kind starts with.
func (k Kind) Prefix() string {
	switch k {
	case Video:
		return "TV"
	case Audio:
		return "AU"
	default:
		return ""
	}
}

// Segment is the path segment of the kind on the media host.
func (k Kind) Segment() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return ""
	}
}

func (k Kind) String() string {
	return k.Segment()
}

func kindFromPrefix(prefix string) (Kind, bool) {
	switch prefix {
	case "TV":
		return Video, true
	case "AU":
		return Audio, true
	default:
		return 0, false
	}
}

// Identity is what a stream file name tells about the broadcast behind it.
type Identity struct {
	Kind         Kind
	CanonicalKey string
	FileName     string
	PublishedAt  time.Time
}

// Hit is one media reference found on an article page, before deduplication.
type Hit struct {
	Identity
	StreamURL string
}

type Reference struct {
	Kind         Kind
	CanonicalKey string
	StreamURL    string
	FileName     string
	PublishedAt  time.Time
	Title        string
	Topic        string
	TargetDir    string
	TargetPath   string
}

// NewReference places a hit under downloadDir/topic.
func NewReference(hit Hit, topic, title, downloadDir string) Reference {
	targetDir := filepath.Join(downloadDir, topic)
	return Reference{
		Kind:         hit.Kind,
		CanonicalKey: hit.CanonicalKey,
		StreamURL:    hit.StreamURL,
		FileName:     hit.FileName,
		PublishedAt:  hit.PublishedAt,
		Title:        title,
		Topic:        topic,
		TargetDir:    targetDir,
		TargetPath:   filepath.Join(targetDir, hit.FileName),
	}
}

// DisplayTitle renders the playlist title, e.g. "(TV) 12.10.2018 23:22: Tagesthemen".
func (r Reference) DisplayTitle() string {
	return fmt.Sprintf("(%s) %s: %s", r.Kind.Prefix(), r.PublishedAt.Format("02.01.2006 15:04"), r.Title)
}
