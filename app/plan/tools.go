package plan

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lysyi3m/media-comb/app/errs"
	"gopkg.in/yaml.v3"
)

// Tool describes how to invoke one external downloader.
type Tool struct {
	Name       string   `yaml:"name"`
	OutputFlag string   `yaml:"output_flag"`
	Filter     []string `yaml:"filter"`
}

type toolsFile struct {
	Tools []Tool `yaml:"tools"`
}

// Tools is the downloader table keyed by tool name.
type Tools map[string]Tool

func DefaultTools() Tools {
	return Tools{
		"curl": {Name: "curl", OutputFlag: "-o", Filter: []string{"-v", "Total"}},
		"wget": {Name: "wget", OutputFlag: "-O", Filter: []string{"saved"}},
	}
}

// LoadTools returns the built-in tools extended with the entries of the YAML
// file at path. An empty path yields the built-ins only.
func LoadTools(path string) (Tools, error) {
	tools := DefaultTools()
	if path == "" {
		return tools, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ConfigError{Field: "tools-file", Value: path, Reason: err.Error()}
	}

	var file toolsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &errs.ConfigError{Field: "tools-file", Value: path, Reason: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	for i, tool := range file.Tools {
		if tool.Name == "" {
			return nil, &errs.ConfigError{Field: "tools-file", Value: path, Reason: fmt.Sprintf("tool at index %d has no name", i)}
		}
		if tool.OutputFlag == "" {
			return nil, &errs.ConfigError{Field: "tools-file", Value: path, Reason: fmt.Sprintf("tool %s has no output_flag", tool.Name)}
		}
		tools[tool.Name] = tool
	}

	return tools, nil
}

// Lookup returns the tool called name.
func (t Tools) Lookup(name string) (Tool, error) {
	tool, ok := t[name]
	if !ok {
		return Tool{}, &errs.ConfigError{
			Field:  "download-tool",
			Value:  name,
			Reason: "must be one of " + strings.Join(t.names(), ", "),
		}
	}
	return tool, nil
}

func (t Tools) names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
