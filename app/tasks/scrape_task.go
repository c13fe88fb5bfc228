package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lysyi3m/media-comb/app/dedup"
	"github.com/lysyi3m/media-comb/app/errs"
	"github.com/lysyi3m/media-comb/app/extract"
	"github.com/lysyi3m/media-comb/app/feed"
	"github.com/lysyi3m/media-comb/app/media"
	"github.com/lysyi3m/media-comb/app/plan"
	"github.com/lysyi3m/media-comb/app/report"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	FeedURL      string
	DownloadDir  string
	PlaylistExt  string
	Player       string
	PlayerDelay  time.Duration
	Concurrency  int
	PersistPages bool
	DryRun       bool
	Now          func() time.Time
}

// Summary is what a finished run produced.
type Summary struct {
	TaskID       string
	Counters     dedup.Counters
	Rows         []report.Row
	Plan         *plan.Plan
	PlaylistPath string
	// DownloadErr is set when the fetch plan ran and failed. The playlist
	// stays on disk regardless.
	DownloadErr error
}

type ScrapeTask struct {
	Task
	opts      Options
	fetcher   feed.PageFetcher
	reader    *feed.Reader
	filterer  *feed.Filterer
	extractor *extract.Extractor
	video     *media.Matcher
	audio     *media.Matcher
	engine    *dedup.Engine
	builder   *plan.Builder
	launcher  plan.Launcher
	printer   *report.Printer
}

func NewScrapeTask(opts Options, fetcher feed.PageFetcher, reader *feed.Reader, filterer *feed.Filterer, extractor *extract.Extractor, video, audio *media.Matcher, engine *dedup.Engine, builder *plan.Builder, launcher plan.Launcher, printer *report.Printer) *ScrapeTask {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PlaylistExt == "" {
		opts.PlaylistExt = "m3u"
	}

	return &ScrapeTask{
		Task:      NewTask(TaskTypeScrape),
		opts:      opts,
		fetcher:   fetcher,
		reader:    reader,
		filterer:  filterer,
		extractor: extractor,
		video:     video,
		audio:     audio,
		engine:    engine,
		builder:   builder,
		launcher:  launcher,
		printer:   printer,
	}
}

// article is the outcome of fetching and extracting one candidate page.
type article struct {
	url    string
	topic  string
	result *extract.Result
	err    error
}

func (t *ScrapeTask) Execute(ctx context.Context) (*Summary, error) {
	t.Start()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	links, err := t.reader.Run(ctx, t.opts.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	candidates, ignored := t.filterer.Run(links)
	for _, ig := range ignored {
		slog.Info("Skipping URL", "url", ig.URL, "reason", ig.Reason)
	}
	t.engine.URLsIgnored(len(ignored))

	now := t.opts.Now()
	t.printer.Header(len(candidates), t.opts.FeedURL, now)

	var prefetched []article
	if t.opts.Concurrency > 1 {
		if prefetched, err = t.prefetch(ctx, candidates); err != nil {
			return nil, err
		}
	}

	summary := &Summary{TaskID: t.ID}

	// Admission follows feed order whatever the fetch order was.
	for i, u := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var a article
		if prefetched != nil {
			a = prefetched[i]
		} else {
			a = t.process(ctx, u)
			if errs.IsFatal(a.err) {
				return nil, a.err
			}
		}

		if row := t.admit(a); row != nil {
			t.printer.Row(*row)
			summary.Rows = append(summary.Rows, *row)
		}
	}

	summary.Counters = t.engine.Counters()
	t.printer.Footer(summary.Counters)

	p, err := t.builder.Build(t.engine.Items())
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch plan: %w", err)
	}
	summary.Plan = p

	if err := plan.EnsureDirs(p.Dirs()...); err != nil {
		return nil, err
	}

	summary.PlaylistPath = plan.PlaylistPath(t.opts.DownloadDir, t.opts.PlaylistExt, now)
	if err := plan.WritePlaylist(summary.PlaylistPath, p.Playlist); err != nil {
		return nil, err
	}

	if t.opts.DryRun {
		slog.Info("Dry run, fetch plan not executed", "playlist", summary.PlaylistPath, "script", p.Script())
	} else {
		t.launch(ctx, p, summary)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration(),
		"articles", summary.Counters.ArticlesProcessed,
		"skipped_articles", summary.Counters.ArticlesSkipped,
		"ignored", summary.Counters.Ignored,
		"accepted", summary.Counters.Accepted(),
		"duplicates", summary.Counters.Duplicates,
		"on_disk", summary.Counters.OnDisk,
		"warnings", summary.Counters.Warnings)

	return summary, nil
}

// prefetch fetches and extracts urls with at most Concurrency requests in
// flight. Results land in per-article slots.
func (t *ScrapeTask) prefetch(ctx context.Context, urls []string) ([]article, error) {
	articles := make([]article, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Concurrency)

	for i, u := range urls {
		g.Go(func() error {
			articles[i] = t.process(gctx, u)
			if errs.IsFatal(articles[i].err) {
				return articles[i].err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (t *ScrapeTask) process(ctx context.Context, url string) article {
	a := article{url: url, topic: media.Topic(url)}

	persistTo := ""
	if t.opts.PersistPages {
		persistTo = filepath.Join(t.opts.DownloadDir, a.topic, media.PageName(url))
	}

	page, err := t.fetcher.Fetch(ctx, url, persistTo)
	if err != nil {
		a.err = err
		return a
	}

	result, err := t.extractor.Run(page, t.video, t.audio)
	if err != nil {
		a.err = &errs.ExtractionError{Source: url, Reason: "unreadable page", Cause: err}
		return a
	}

	a.result = result
	return a
}

// admit feeds the hits of one article into the engine and returns its
// report row. A skipped article yields no row.
func (t *ScrapeTask) admit(a article) *report.Row {
	if a.err != nil {
		slog.Warn("Failed to open article", "url", a.url, "error", a.err)
		t.engine.ArticleSkipped()
		return nil
	}

	for _, w := range a.result.Warnings {
		slog.Warn("Skipping media item", "url", a.url, "error", w)
	}
	t.engine.Warned(len(a.result.Warnings))

	row := &report.Row{
		Videos: len(a.result.Videos),
		Audios: len(a.result.Audios),
		Title:  a.result.Title,
	}

	for _, hits := range [][]media.Hit{a.result.Videos, a.result.Audios} {
		for _, hit := range hits {
			decision := t.engine.Admit(hit, a.topic, a.result.Title)
			if decision.Outcome == dedup.Accepted {
				row.Accept(decision.Reference.Kind)
			}
		}
	}

	t.engine.ArticleProcessed()
	return row
}

// launch starts the player and runs the fetch plan. Neither may undo what is
// already on disk.
func (t *ScrapeTask) launch(ctx context.Context, p *plan.Plan, summary *Summary) {
	var wg sync.WaitGroup

	if t.opts.Player != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.startPlayer(ctx, summary.PlaylistPath)
		}()
	}

	if len(p.Commands) > 0 {
		if err := t.launcher.Run(ctx, plan.ScriptProcess(p.Script())); err != nil {
			slog.Error("Download pipeline failed", "error", err)
			summary.DownloadErr = err
		}
	}

	wg.Wait()
}

func (t *ScrapeTask) startPlayer(ctx context.Context, playlistPath string) {
	timer := time.NewTimer(t.opts.PlayerDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if err := t.launcher.Start(ctx, plan.PlayerProcess(t.opts.Player, playlistPath)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Warn("Failed to start player", "player", t.opts.Player, "error", err)
	}
}
