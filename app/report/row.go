package report

import (
	"github.com/lysyi3m/media-comb/app/media"
)

const (
	noMarker      = " "
	partialMarker = "*"
	emptyMarker   = "~"
)

// Row is the progress line of one article: how many references of each kind
// the page proposed and how many of them were accepted.
type Row struct {
	Videos         int
	Audios         int
	AcceptedVideos int
	AcceptedAudios int
	Title          string
}

func (r *Row) Accept(kind media.Kind) {
	if kind == media.Audio {
		r.AcceptedAudios++
	} else {
		r.AcceptedVideos++
	}
}

func (r Row) Found() int {
	return r.Videos + r.Audios
}

func (r Row) Accepted() int {
	return r.AcceptedVideos + r.AcceptedAudios
}

// Empty reports a page without any media of the selected qualities.
func (r Row) Empty() bool {
	return r.Found() == 0
}

// Markers returns the video, audio and title markers. A kind is marked "*"
// when not everything found was accepted; the title is marked "~" when the
// page had no media, or had both kinds and contributed nothing new.
func (r Row) Markers() (video, audio, title string) {
	video, audio, title = noMarker, noMarker, noMarker

	if r.Empty() {
		return video, audio, emptyMarker
	}

	if r.Videos != r.AcceptedVideos {
		video = partialMarker
	}
	if r.Audios != r.AcceptedAudios {
		audio = partialMarker
	}
	if r.Videos > 0 && r.Audios > 0 && r.Accepted() == 0 {
		title = emptyMarker
	}
	return video, audio, title
}
