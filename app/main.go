package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/media-comb/app/cfg"
	"github.com/lysyi3m/media-comb/app/dedup"
	"github.com/lysyi3m/media-comb/app/errs"
	"github.com/lysyi3m/media-comb/app/extract"
	"github.com/lysyi3m/media-comb/app/feed"
	"github.com/lysyi3m/media-comb/app/fetch"
	"github.com/lysyi3m/media-comb/app/media"
	"github.com/lysyi3m/media-comb/app/plan"
	"github.com/lysyi3m/media-comb/app/report"
	"github.com/lysyi3m/media-comb/app/tasks"
)

const playerDelay = time.Second

func main() {
	os.Exit(run())
}

func run() int {
	setupLogger(false)

	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		var cfgErr *errs.ConfigError
		if errors.As(err, &cfgErr) {
			slog.Error("Invalid configuration", "error", err)
		}
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupLogger(appCfg.Debug)
	slog.Debug("Configuration loaded", "version", appCfg.Version, "download_dir", appCfg.DownloadDir, "tool", appCfg.Tool.Name)

	video, err := media.Compile(media.Video, appCfg.VideoQuality)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}
	audio, err := media.Compile(media.Audio, appCfg.AudioQuality)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewFetcher(fetch.Options{
		Headers:   appCfg.Headers,
		Timeout:   appCfg.Timeout,
		RateLimit: appCfg.RateLimit,
	})

	printer := report.NewPrinter(os.Stdout, appCfg.NoColor)
	printer.Intro(appCfg.VideoQuality, appCfg.AudioQuality, appCfg.DownloadDir)

	task := tasks.NewScrapeTask(tasks.Options{
		FeedURL:      appCfg.FeedURL,
		DownloadDir:  appCfg.DownloadDir,
		PlaylistExt:  appCfg.PlaylistExt,
		Player:       appCfg.Player,
		PlayerDelay:  playerDelay,
		Concurrency:  appCfg.Concurrency,
		PersistPages: appCfg.PersistPages,
		DryRun:       appCfg.DryRun,
	},
		fetcher,
		feed.NewReader(fetcher, feed.NewParser()),
		feed.NewFilterer(appCfg.SiteURL),
		extract.NewExtractor(appCfg.Location),
		video, audio,
		dedup.NewEngine(appCfg.DownloadDir),
		plan.NewBuilder(appCfg.Tool),
		plan.NewExecLauncher(),
		printer)

	summary, err := task.Execute(ctx)
	if err != nil {
		slog.Error("Run failed", "id", task.GetID(), "error", err)
		return 1
	}

	if appCfg.DryRun {
		os.Stdout.WriteString(summary.Plan.Script() + "\n")
	}
	if summary.DownloadErr != nil {
		return 1
	}
	return 0
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
