package plan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/media-comb/app/errs"
	"github.com/lysyi3m/media-comb/app/media"
)

func reference(t *testing.T, fileName, topic, title, dir string) media.Reference {
	t.Helper()

	id, err := media.ParseFileName(fileName, time.UTC)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	hit := media.Hit{Identity: id, StreamURL: "https://download.media.tagesschau.de/video/2018/1012/" + fileName}
	return media.NewReference(hit, topic, title, dir)
}

func TestBuildOrdering(t *testing.T) {
	dir := "/media"
	items := []media.Reference{
		reference(t, "TV-20181012-2322-5601.webxl.h264.mp4", "wahl", "Wahl", dir),
		reference(t, "AU-20181012-2000-0001.mp3", "brexit", "Brexit", dir),
		reference(t, "TV-20181012-1800-0002.webxl.h264.mp4", "wahl", "Wahl", dir),
	}
	before := append([]media.Reference(nil), items...)

	tools := DefaultTools()
	builder := NewBuilder(tools["curl"])

	first, err := builder.Build(items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if first.Items[0].Topic != "brexit" {
		t.Errorf("Expected brexit first, got: %s", first.Items[0].Topic)
	}
	if first.Items[1].CanonicalKey != "20181012-1800-0002.webxl.h264.mp4" {
		t.Errorf("Expected keys ascending within topic, got: %s", first.Items[1].CanonicalKey)
	}

	for i := range items {
		if items[i].CanonicalKey != before[i].CanonicalKey {
			t.Fatal("Expected input slice to stay unmodified")
		}
	}

	// Any input order yields the same output.
	reversed := []media.Reference{items[2], items[1], items[0]}
	second, err := builder.Build(reversed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first.Playlist != second.Playlist || first.Script() != second.Script() {
		t.Error("Expected deterministic output regardless of input order")
	}
}

func TestBuildPlaylist(t *testing.T) {
	dir := "/media"
	items := []media.Reference{
		reference(t, "TV-20181012-2322-5601.webxl.h264.mp4", "wahl-bayern", "Wahl-Ergebnis", dir),
	}

	p, err := NewBuilder(DefaultTools()["curl"]).Build(items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := "#EXTM3U\n" +
		"#EXTINF:,,(TV) 12.10.2018 23:22: Wahl\u2011Ergebnis\n" +
		"/media/wahl-bayern/TV-20181012-2322-5601.webxl.h264.mp4\n"
	if p.Playlist != want {
		t.Errorf("Expected playlist:\n%s\ngot:\n%s", want, p.Playlist)
	}
	if strings.Contains(strings.Split(p.Playlist, "\n")[1], "-") {
		t.Error("Expected no ASCII hyphen in the title line")
	}
}

func TestBuildEmpty(t *testing.T) {
	p, err := NewBuilder(DefaultTools()["curl"]).Build(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.Playlist != "#EXTM3U\n" {
		t.Errorf("Expected header only, got: %q", p.Playlist)
	}
	if len(p.Commands) != 0 {
		t.Errorf("Expected no commands, got: %d", len(p.Commands))
	}
	if p.Script() != "echo done" {
		t.Errorf("Expected script 'echo done', got: %s", p.Script())
	}
}

func TestBuildIncompleteReference(t *testing.T) {
	_, err := NewBuilder(DefaultTools()["curl"]).Build([]media.Reference{{CanonicalKey: "x"}})
	if err == nil {
		t.Error("Expected error for incomplete reference")
	}
}

func TestCommandRendering(t *testing.T) {
	tools := DefaultTools()
	items := []media.Reference{
		reference(t, "AU-20181012-2000-0001.mp3", "brexit", "Brexit", "/media"),
	}

	curl, _ := NewBuilder(tools["curl"]).Build(items)
	wantCurl := "cd /media/brexit && curl https://download.media.tagesschau.de/video/2018/1012/AU-20181012-2000-0001.mp3 -o AU-20181012-2000-0001.mp3 2>&1 | grep -v Total"
	if got := curl.Commands[0].String(); got != wantCurl {
		t.Errorf("Expected %s, got: %s", wantCurl, got)
	}
	if got := curl.Script(); got != wantCurl+" && echo done" {
		t.Errorf("Expected script to end with echo done, got: %s", got)
	}

	wget, _ := NewBuilder(tools["wget"]).Build(items)
	if got := wget.Commands[0].String(); !strings.Contains(got, " -O AU-20181012-2000-0001.mp3 2>&1 | grep saved") {
		t.Errorf("Expected wget flags, got: %s", got)
	}
}

func TestCommandQuoting(t *testing.T) {
	c := Command{Dir: "/my media/wahl", Tool: Tool{Name: "curl", OutputFlag: "-o"}, URL: "https://x/a.mp3", Output: "a.mp3"}

	want := "cd '/my media/wahl' && curl https://x/a.mp3 -o a.mp3"
	if got := c.String(); got != want {
		t.Errorf("Expected %s, got: %s", want, got)
	}
}

func TestPlanDirs(t *testing.T) {
	items := []media.Reference{
		reference(t, "TV-20181012-2322-5601.webxl.h264.mp4", "wahl", "Wahl", "/media"),
		reference(t, "TV-20181012-1800-0002.webxl.h264.mp4", "wahl", "Wahl", "/media"),
		reference(t, "AU-20181012-2000-0001.mp3", "brexit", "Brexit", "/media"),
	}
	p, _ := NewBuilder(DefaultTools()["curl"]).Build(items)

	dirs := p.Dirs()
	if len(dirs) != 2 || dirs[0] != "/media/brexit" || dirs[1] != "/media/wahl" {
		t.Errorf("Expected 2 distinct dirs, got: %v", dirs)
	}
}

func TestLoadTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	data := `tools:
  - name: aria2c
    output_flag: "-o"
    filter: ["Download complete"]
  - name: wget
    output_flag: "--output-document"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tools, err := LoadTools(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	aria, err := tools.Lookup("aria2c")
	if err != nil {
		t.Fatalf("Expected aria2c to be loaded, got: %v", err)
	}
	if aria.OutputFlag != "-o" || len(aria.Filter) != 1 {
		t.Errorf("Unexpected tool: %+v", aria)
	}
	if tools["wget"].OutputFlag != "--output-document" {
		t.Errorf("Expected file to override built-in wget, got: %s", tools["wget"].OutputFlag)
	}
	if _, err := tools.Lookup("curl"); err != nil {
		t.Errorf("Expected curl to stay available, got: %v", err)
	}

	c := Command{Dir: "/d", Tool: aria, URL: "https://x/a.mp3", Output: "a.mp3"}
	if got := c.String(); !strings.HasSuffix(got, "| grep 'Download complete'") {
		t.Errorf("Expected quoted filter, got: %s", got)
	}
}

func TestLoadToolsErrors(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"invalid.yaml": "tools: [",
		"noname.yaml":  "tools:\n  - output_flag: -o\n",
		"noflag.yaml":  "tools:\n  - name: x\n",
	}

	for name, data := range tests {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(data), 0644)

		_, err := LoadTools(path)
		var cfgErr *errs.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected ConfigError, got: %v", name, err)
		}
	}

	if _, err := LoadTools(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing tools file")
	}
}

func TestLookupUnknownTool(t *testing.T) {
	_, err := DefaultTools().Lookup("scp")

	var cfgErr *errs.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got: %v", err)
	}
	if cfgErr.Reason != "must be one of curl, wget" {
		t.Errorf("Unexpected reason: %s", cfgErr.Reason)
	}
}

func TestWritePlaylist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	now := time.Date(2023, 10, 8, 20, 0, 0, 0, time.UTC)

	path := PlaylistPath(dir, "m3u", now)
	if filepath.Base(path) != "2023-10-08.m3u" {
		t.Errorf("Expected dated playlist name, got: %s", path)
	}

	if err := WritePlaylist(path, "#EXTM3U\n"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected playlist on disk, got: %v", err)
	}
	if string(data) != "#EXTM3U\n" {
		t.Errorf("Unexpected playlist content: %q", data)
	}
}

func TestWritePlaylistFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0644)

	err := WritePlaylist(filepath.Join(blocker, "2023-10-08.m3u"), "#EXTM3U\n")

	var fsErr *errs.FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("Expected FilesystemError, got: %v", err)
	}
}
