package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/media-comb/app/errs"
	"github.com/lysyi3m/media-comb/app/media"
	"github.com/lysyi3m/media-comb/app/plan"
	"github.com/mitchellh/go-homedir"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const defaultUserAgent = "Mozilla/5.0 (Windows; U; Windows NT 6.1; ru; rv:1.9.2.3) Gecko/20100401 Firefox/4.0 (.NET CLR 3.5.30729)"

type rawCfg struct {
	// Media selection
	VideoQuality string `short:"v" long:"video-quality" env:"VIDEO_QUALITY" default:"xl" description:"Video quality: sm, m, l or xl"`
	AudioQuality string `short:"a" long:"audio-quality" env:"AUDIO_QUALITY" default:"mp3" description:"Audio quality: mp3 or ogg"`

	// Output
	DownloadDir  string `short:"d" long:"download-dir" env:"DOWNLOAD_DIR" default:"~/Downloads" description:"Directory the media files are downloaded to"`
	DownloadTool string `long:"download-tool" env:"DOWNLOAD_TOOL" default:"curl" description:"Command line tool used to download the media files"`
	ToolsFile    string `long:"tools-file" env:"TOOLS_FILE" description:"YAML file with additional download tools"`
	Player       string `short:"p" long:"player" env:"PLAYER" default:"vlc" description:"Media player opened with the playlist (empty disables)"`
	PlaylistExt  string `long:"playlist-ext" env:"PLAYLIST_EXT" default:"m3u" description:"Playlist file extension"`
	NoPageCache  bool   `long:"no-page-cache" env:"NO_PAGE_CACHE" description:"Do not keep a copy of fetched article pages"`
	DryRun       bool   `long:"dry-run" env:"DRY_RUN" description:"Write the playlist and print the fetch plan without running it"`

	// HTTP
	UserAgent   string   `short:"u" long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	Headers     []string `short:"H" long:"header" description:"Extra request header as 'Key: Value' (repeatable)"`
	FeedURL     string   `long:"feed-url" env:"FEED_URL" default:"https://www.tagesschau.de/xml/atom/" description:"Atom feed listing the articles"`
	SiteURL     string   `long:"site-url" env:"SITE_URL" default:"https://www.tagesschau.de" description:"Only articles below this URL are opened"`
	Concurrency int      `long:"concurrency" env:"CONCURRENCY" default:"1" description:"Number of articles fetched in parallel"`
	RateLimit   float64  `long:"rate-limit" env:"RATE_LIMIT" default:"0" description:"Maximum requests per second (0 disables)"`
	Timeout     int      `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP timeout in seconds"`

	// Application
	Timezone string `long:"timezone" env:"TZ" default:"Europe/Berlin" description:"Timezone of the timestamps in media file names"`
	NoColor  bool   `long:"no-color" env:"NO_COLOR" description:"Disable colored output"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and the environment into a validated Cfg. It returns
// (nil, nil) when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return build(raw)
}

func build(raw rawCfg) (*Cfg, error) {
	if !media.IsValidQuality(media.Video, raw.VideoQuality) {
		return nil, &errs.ConfigError{Field: "video-quality", Value: raw.VideoQuality, Reason: "must be one of " + strings.Join(media.QualityKeys(media.Video), ", ")}
	}
	if !media.IsValidQuality(media.Audio, raw.AudioQuality) {
		return nil, &errs.ConfigError{Field: "audio-quality", Value: raw.AudioQuality, Reason: "must be one of " + strings.Join(media.QualityKeys(media.Audio), ", ")}
	}

	downloadDir, err := resolveDownloadDir(raw.DownloadDir)
	if err != nil {
		return nil, err
	}

	tools, err := plan.LoadTools(raw.ToolsFile)
	if err != nil {
		return nil, err
	}
	tool, err := tools.Lookup(raw.DownloadTool)
	if err != nil {
		return nil, err
	}

	headers, err := parseHeaders(raw.Headers)
	if err != nil {
		return nil, err
	}
	headers.Set("User-Agent", cmp.Or(raw.UserAgent, defaultUserAgent))

	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, &errs.ConfigError{Field: "timezone", Value: raw.Timezone, Reason: err.Error()}
	}

	if raw.Concurrency < 1 {
		return nil, &errs.ConfigError{Field: "concurrency", Value: strconv.Itoa(raw.Concurrency), Reason: "must be at least 1"}
	}
	if raw.RateLimit < 0 {
		return nil, &errs.ConfigError{Field: "rate-limit", Value: strconv.FormatFloat(raw.RateLimit, 'f', -1, 64), Reason: "must not be negative"}
	}
	if raw.Timeout < 1 {
		return nil, &errs.ConfigError{Field: "timeout", Value: strconv.Itoa(raw.Timeout), Reason: "must be at least 1 second"}
	}
	if raw.PlaylistExt == "" {
		return nil, &errs.ConfigError{Field: "playlist-ext", Reason: "must not be empty"}
	}

	return &Cfg{
		VideoQuality: raw.VideoQuality,
		AudioQuality: raw.AudioQuality,
		DownloadDir:  downloadDir,
		Tool:         tool,
		Player:       raw.Player,
		PlaylistExt:  raw.PlaylistExt,
		PersistPages: !raw.NoPageCache,
		DryRun:       raw.DryRun,
		Headers:      headers,
		FeedURL:      raw.FeedURL,
		SiteURL:      raw.SiteURL,
		Concurrency:  raw.Concurrency,
		RateLimit:    raw.RateLimit,
		Timeout:      time.Duration(raw.Timeout) * time.Second,
		Location:     loc,
		NoColor:      raw.NoColor,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}, nil
}

// resolveDownloadDir expands ~ and makes dir absolute. A missing directory is
// created later; an existing non-directory is rejected.
func resolveDownloadDir(dir string) (string, error) {
	if dir == "" {
		return "", &errs.ConfigError{Field: "download-dir", Reason: "must not be empty"}
	}

	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", &errs.ConfigError{Field: "download-dir", Value: dir, Reason: err.Error()}
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", &errs.ConfigError{Field: "download-dir", Value: dir, Reason: err.Error()}
	}

	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return "", &errs.ConfigError{Field: "download-dir", Value: dir, Reason: "is not a directory"}
	}

	return abs, nil
}

func parseHeaders(values []string) (http.Header, error) {
	headers := make(http.Header)
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, &errs.ConfigError{Field: "header", Value: v, Reason: "must look like 'Key: Value'"}
		}
		headers.Add(key, strings.TrimSpace(value))
	}
	return headers, nil
}
