// Package export writes the task list in interchange formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected json|yaml)", s)
	}
}

// entry is the exported shape of a task. It matches the stored JSON shape.
type entry struct {
	ID       int64  `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Deadline string `json:"deadline" yaml:"deadline"`
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, tasks []todo.Task, format Format) error {
	entries := make([]entry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, entry{ID: t.ID, Text: t.Text, Deadline: t.Deadline})
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
