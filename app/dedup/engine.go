package dedup

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/lysyi3m/media-comb/app/media"
)

type Outcome int

const (
	Accepted Outcome = iota
	DuplicateSkipped
	AlreadyOnDisk
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case DuplicateSkipped:
		return "duplicate"
	case AlreadyOnDisk:
		return "on disk"
	default:
		return "unknown"
	}
}

// Decision is the verdict for one hit. Reference is set for every outcome,
// so callers can log where an item lives even when it is skipped.
type Decision struct {
	Outcome   Outcome
	Reference media.Reference
}

type Counters struct {
	AcceptedVideos    int
	AcceptedAudios    int
	Duplicates        int
	OnDisk            int
	ArticlesProcessed int
	ArticlesSkipped   int
	Ignored           int
	Warnings          int
}

func (c Counters) Accepted() int {
	return c.AcceptedVideos + c.AcceptedAudios
}

// Skipped counts items that were found but will not be downloaded.
func (c Counters) Skipped() int {
	return c.Duplicates + c.OnDisk
}

// Engine accumulates the run's accepted media set.
type Engine struct {
	mu          sync.Mutex
	downloadDir string
	seen        map[string]struct{}
	items       []media.Reference
	counters    Counters
}

func NewEngine(downloadDir string) *Engine {
	return &Engine{
		downloadDir: downloadDir,
		seen:        make(map[string]struct{}),
	}
}

// Admit decides whether hit joins the accepted set. The canonical key is
// checked first, then the target path on disk. A target that cannot be
// checked counts as absent and as a warning.
func (e *Engine) Admit(hit media.Hit, topic, title string) Decision {
	ref := media.NewReference(hit, topic, title, e.downloadDir)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.seen[ref.CanonicalKey]; ok {
		e.counters.Duplicates++
		slog.Debug("Duplicate skipped", "key", ref.CanonicalKey, "topic", topic)
		return Decision{Outcome: DuplicateSkipped, Reference: ref}
	}

	onDisk, err := exists(ref.TargetPath)
	if err != nil {
		slog.Warn("Failed to check target file", "path", ref.TargetPath, "error", err)
		e.counters.Warnings++
	}
	if onDisk {
		e.seen[ref.CanonicalKey] = struct{}{}
		e.counters.OnDisk++
		slog.Debug("Already on disk", "path", ref.TargetPath)
		return Decision{Outcome: AlreadyOnDisk, Reference: ref}
	}

	e.seen[ref.CanonicalKey] = struct{}{}
	e.items = append(e.items, ref)
	if ref.Kind == media.Audio {
		e.counters.AcceptedAudios++
	} else {
		e.counters.AcceptedVideos++
	}

	return Decision{Outcome: Accepted, Reference: ref}
}

// exists reports a non-empty regular file at path. Zero-byte files are
// leftovers of interrupted downloads.
func exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// Items returns a copy of the accepted references in admission order.
func (e *Engine) Items() []media.Reference {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]media.Reference, len(e.items))
	copy(items, e.items)
	return items
}

func (e *Engine) Counters() Counters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters
}

func (e *Engine) ArticleProcessed() {
	e.mu.Lock()
	e.counters.ArticlesProcessed++
	e.mu.Unlock()
}

func (e *Engine) ArticleSkipped() {
	e.mu.Lock()
	e.counters.ArticlesSkipped++
	e.mu.Unlock()
}

func (e *Engine) URLsIgnored(n int) {
	e.mu.Lock()
	e.counters.Ignored += n
	e.mu.Unlock()
}

func (e *Engine) Warned(n int) {
	e.mu.Lock()
	e.counters.Warnings += n
	e.mu.Unlock()
}
