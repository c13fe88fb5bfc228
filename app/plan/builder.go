package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/lysyi3m/media-comb/app/media"
)

const (
	playlistHeader    = "#EXTM3U"
	nonBreakingHyphen = "\u2011"
)

// Command is one download of the fetch plan.
type Command struct {
	Dir    string
	Tool   Tool
	URL    string
	Output string
}

// String renders the command as a shell pipeline:
// cd <dir> && <tool> <url> <flag> <file> 2>&1 | grep <filter...>
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(shellquote.Join("cd", c.Dir))
	sb.WriteString(" && ")
	sb.WriteString(shellquote.Join(c.Tool.Name, c.URL, c.Tool.OutputFlag, c.Output))
	if len(c.Tool.Filter) > 0 {
		sb.WriteString(" 2>&1 | ")
		sb.WriteString(shellquote.Join(append([]string{"grep"}, c.Tool.Filter...)...))
	}
	return sb.String()
}

type Plan struct {
	Items    []media.Reference
	Playlist string
	Commands []Command
}

// Script chains every command into one shell invocation ending in "echo done".
func (p *Plan) Script() string {
	parts := make([]string, 0, len(p.Commands)+1)
	for _, c := range p.Commands {
		parts = append(parts, c.String())
	}
	parts = append(parts, "echo done")
	return strings.Join(parts, " && ")
}

// Dirs lists the distinct target directories of the plan in order.
func (p *Plan) Dirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, item := range p.Items {
		if !seen[item.TargetDir] {
			seen[item.TargetDir] = true
			dirs = append(dirs, item.TargetDir)
		}
	}
	return dirs
}

// Sort orders items by topic, then canonical key.
func Sort(items []media.Reference) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Topic != items[j].Topic {
			return items[i].Topic < items[j].Topic
		}
		return items[i].CanonicalKey < items[j].CanonicalKey
	})
}

type Builder struct {
	tool Tool
}

func NewBuilder(tool Tool) *Builder {
	return &Builder{tool: tool}
}

// Build renders the playlist and the fetch plan for items. The input slice
// is not modified.
func (b *Builder) Build(items []media.Reference) (*Plan, error) {
	sorted := make([]media.Reference, len(items))
	copy(sorted, items)
	Sort(sorted)

	var playlist strings.Builder
	playlist.WriteString(playlistHeader + "\n")

	commands := make([]Command, 0, len(sorted))
	for _, item := range sorted {
		if item.StreamURL == "" || item.FileName == "" || item.TargetDir == "" {
			return nil, fmt.Errorf("failed to plan %s: incomplete reference", item.CanonicalKey)
		}

		title := strings.ReplaceAll(item.DisplayTitle(), "-", nonBreakingHyphen)
		fmt.Fprintf(&playlist, "#EXTINF:,,%s\n%s\n", title, item.TargetPath)

		commands = append(commands, Command{
			Dir:    item.TargetDir,
			Tool:   b.tool,
			URL:    item.StreamURL,
			Output: item.FileName,
		})
	}

	return &Plan{
		Items:    sorted,
		Playlist: playlist.String(),
		Commands: commands,
	}, nil
}
