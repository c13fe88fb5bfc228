package cfg

import (
	"net/http"
	"time"

	"github.com/lysyi3m/media-comb/app/plan"
)

type Cfg struct {
	// Media selection
	VideoQuality string
	AudioQuality string

	// Output
	DownloadDir  string
	Tool         plan.Tool
	Player       string
	PlaylistExt  string
	PersistPages bool
	DryRun       bool

	// HTTP
	Headers     http.Header
	FeedURL     string
	SiteURL     string
	Concurrency int
	RateLimit   float64
	Timeout     time.Duration

	// Application metadata
	Location *time.Location
	NoColor  bool
	Debug    bool
	Version  string
}
