package dedup

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/media-comb/app/media"
)

func hit(t *testing.T, fileName string) media.Hit {
	t.Helper()

	id, err := media.ParseFileName(fileName, time.UTC)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return media.Hit{Identity: id, StreamURL: "https://download.media.tagesschau.de/x/" + fileName}
}

func TestAdmitDuplicate(t *testing.T) {
	engine := NewEngine(t.TempDir())
	h := hit(t, "TV-20181012-2322-5601.webxl.h264.mp4")

	first := engine.Admit(h, "wahl", "Wahl")
	if first.Outcome != Accepted {
		t.Errorf("Expected first admit to be accepted, got: %s", first.Outcome)
	}

	second := engine.Admit(h, "brexit", "Brexit")
	if second.Outcome != DuplicateSkipped {
		t.Errorf("Expected second admit to be a duplicate, got: %s", second.Outcome)
	}

	if items := engine.Items(); len(items) != 1 {
		t.Errorf("Expected 1 accepted item, got: %d", len(items))
	}

	counters := engine.Counters()
	if counters.AcceptedVideos != 1 || counters.Duplicates != 1 {
		t.Errorf("Expected 1 accepted video and 1 duplicate, got: %+v", counters)
	}
}

func TestAdmitKeyIgnoresPrefix(t *testing.T) {
	engine := NewEngine(t.TempDir())

	video := hit(t, "TV-20181012-2322-5601.mp3")
	audio := hit(t, "AU-20181012-2322-5601.mp3")

	engine.Admit(video, "a", "A")
	decision := engine.Admit(audio, "b", "B")

	if decision.Outcome != DuplicateSkipped {
		t.Errorf("Expected same canonical key under another prefix to be a duplicate, got: %s", decision.Outcome)
	}
}

func TestAdmitAlreadyOnDisk(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(dir)
	h := hit(t, "TV-20181012-2322-5601.webxl.h264.mp4")

	if err := os.MkdirAll(filepath.Join(dir, "wahl"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wahl", h.FileName), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}

	decision := engine.Admit(h, "wahl", "Wahl")
	if decision.Outcome != AlreadyOnDisk {
		t.Errorf("Expected already on disk, got: %s", decision.Outcome)
	}
	if len(engine.Items()) != 0 {
		t.Error("Expected item on disk to be excluded")
	}
	if counters := engine.Counters(); counters.OnDisk != 1 || counters.Skipped() != 1 {
		t.Errorf("Expected 1 on disk, got: %+v", counters)
	}
}

func TestAdmitZeroByteFile(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(dir)
	h := hit(t, "AU-20181012-2322-5601.mp3")

	os.MkdirAll(filepath.Join(dir, "wahl"), 0755)
	os.WriteFile(filepath.Join(dir, "wahl", h.FileName), nil, 0644)

	decision := engine.Admit(h, "wahl", "Wahl")
	if decision.Outcome != Accepted {
		t.Errorf("Expected zero-byte file to be downloaded again, got: %s", decision.Outcome)
	}
	if counters := engine.Counters(); counters.AcceptedAudios != 1 {
		t.Errorf("Expected 1 accepted audio, got: %d", counters.AcceptedAudios)
	}
}

func TestAdmitUncheckableTarget(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(dir)
	h := hit(t, "TV-20181012-2322-5601.webxl.h264.mp4")

	// A regular file where the topic directory belongs makes stat fail with ENOTDIR.
	if err := os.WriteFile(filepath.Join(dir, "wahl"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	decision := engine.Admit(h, "wahl", "Wahl")
	if decision.Outcome != Accepted {
		t.Errorf("Expected uncheckable target to count as absent, got: %s", decision.Outcome)
	}

	counters := engine.Counters()
	if counters.AcceptedVideos != 1 || counters.Warnings != 1 {
		t.Errorf("Expected 1 accepted video and 1 warning, got: %+v", counters)
	}
}

func TestAdmitReference(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(dir)

	decision := engine.Admit(hit(t, "TV-20181012-2322-5601.webxl.h264.mp4"), "wahl", "Wahl")

	ref := decision.Reference
	if ref.TargetDir != filepath.Join(dir, "wahl") {
		t.Errorf("Expected target dir under topic, got: %s", ref.TargetDir)
	}
	if ref.TargetPath != filepath.Join(dir, "wahl", "TV-20181012-2322-5601.webxl.h264.mp4") {
		t.Errorf("Expected target path, got: %s", ref.TargetPath)
	}
	if ref.Title != "Wahl" || ref.Topic != "wahl" {
		t.Errorf("Expected title and topic to be kept, got: %s / %s", ref.Title, ref.Topic)
	}
}

func TestAdmitConcurrent(t *testing.T) {
	engine := NewEngine(t.TempDir())
	h := hit(t, "TV-20181012-2322-5601.webxl.h264.mp4")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.Admit(h, "wahl", "Wahl")
			engine.ArticleProcessed()
		}()
	}
	wg.Wait()

	counters := engine.Counters()
	if counters.AcceptedVideos != 1 {
		t.Errorf("Expected exactly 1 accepted, got: %d", counters.AcceptedVideos)
	}
	if counters.Duplicates != 19 {
		t.Errorf("Expected 19 duplicates, got: %d", counters.Duplicates)
	}
	if counters.ArticlesProcessed != 20 {
		t.Errorf("Expected 20 processed, got: %d", counters.ArticlesProcessed)
	}
}

func TestCountersBookkeeping(t *testing.T) {
	engine := NewEngine(t.TempDir())

	engine.ArticleSkipped()
	engine.URLsIgnored(3)
	engine.Warned(2)

	counters := engine.Counters()
	if counters.ArticlesSkipped != 1 || counters.Ignored != 3 || counters.Warnings != 2 {
		t.Errorf("Unexpected counters: %+v", counters)
	}
	if counters.Accepted() != 0 {
		t.Errorf("Expected 0 accepted, got: %d", counters.Accepted())
	}
}
