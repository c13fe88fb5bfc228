package media

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// <PREFIX>-<YYYYMMDD>-<HHMM>-<NNNN>.<suffix>
var fileNamePattern = regexp.MustCompile(`^([A-Z]{2})-(\d{8})-(\d{4})-(\d{4})\.([A-Za-z0-9.]+)$`)

var topicPattern = regexp.MustCompile(`-?\d*\.html$`)

// ParseFileName validates a stream file name and derives its identity.
// Timestamps are interpreted in loc.
func ParseFileName(name string, loc *time.Location) (Identity, error) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Identity{}, fmt.Errorf("file name %q does not match PREFIX-YYYYMMDD-HHMM-NNNN.suffix", name)
	}

	kind, ok := kindFromPrefix(m[1])
	if !ok {
		return Identity{}, fmt.Errorf("file name %q has unknown prefix %q", name, m[1])
	}

	if loc == nil {
		loc = time.Local
	}
	publishedAt, err := time.ParseInLocation("20060102-1504", m[2]+"-"+m[3], loc)
	if err != nil {
		return Identity{}, fmt.Errorf("file name %q has invalid timestamp: %w", name, err)
	}

	return Identity{
		Kind:         kind,
		CanonicalKey: name[len(m[1])+1:],
		FileName:     name,
		PublishedAt:  publishedAt,
	}, nil
}

// FileNameOf returns the last path segment of a stream URL.
func FileNameOf(streamURL string) string {
	if u, err := url.Parse(streamURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(streamURL)
}

// NormalizeStreamURL rewrites protocol-relative URLs to https.
func NormalizeStreamURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// Topic derives the storage slug of an article from its URL,
// e.g. ".../inland/wahl-bayern-101.html" -> "wahl-bayern".
func Topic(articleURL string) string {
	name := PageName(articleURL)
	topic := topicPattern.ReplaceAllString(name, "")
	if topic == "" {
		return "misc"
	}
	return topic
}

// PageName is the last path segment of an article URL.
func PageName(articleURL string) string {
	if u, err := url.Parse(articleURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(articleURL)
}
