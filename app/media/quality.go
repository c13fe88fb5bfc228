package media

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lysyi3m/media-comb/app/errs"
)

var videoQualities = map[string]string{
	"sm": "websm.h264.mp4",
	"m":  "webm.h264.mp4",
	"l":  "webl.h264.mp4",
	"xl": "webxl.h264.mp4",
}

var audioQualities = map[string]string{
	"mp3": "mp3",
	"ogg": "ogg",
}

func qualityTable(kind Kind) map[string]string {
	if kind == Audio {
		return audioQualities
	}
	return videoQualities
}

// QualityKeys lists the selectable quality keys of a kind in sorted order.
func QualityKeys(kind Kind) []string {
	table := qualityTable(kind)
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func IsValidQuality(kind Kind, key string) bool {
	_, ok := qualityTable(kind)[key]
	return ok
}

// Matcher recognizes stream references of one kind at one quality.
type Matcher struct {
	Kind    Kind
	Quality string
	suffix  string
	re      *regexp.Regexp
}

// Compile builds the matcher for kind at qualityKey.
func Compile(kind Kind, qualityKey string) (*Matcher, error) {
	suffix, ok := qualityTable(kind)[qualityKey]
	if !ok {
		return nil, &errs.ConfigError{
			Field:  kind.Segment() + "-quality",
			Value:  qualityKey,
			Reason: "must be one of " + strings.Join(QualityKeys(kind), ", "),
		}
	}

	pattern := fmt.Sprintf(`//(?:download\.)?media\.tagesschau\.de/%s/\d{4}/\d{4}/%s-\d{8}-\d{4}-\d{4}\.%s(?:[^\w.]|$)`,
		kind.Segment(), kind.Prefix(), regexp.QuoteMeta(suffix))

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s pattern: %w", kind, err)
	}

	return &Matcher{Kind: kind, Quality: qualityKey, suffix: suffix, re: re}, nil
}

func (m *Matcher) Match(s string) bool {
	return m.re.MatchString(s)
}

// Selects reports whether fileName carries the matcher's quality suffix.
func (m *Matcher) Selects(fileName string) bool {
	return strings.HasSuffix(fileName, "."+m.suffix)
}
