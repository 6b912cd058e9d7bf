package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var tasksSchema []byte

const tasksSchemaURL = "tasklist://tasks.schema.json"

// CheckIssue is one schema violation in the stored content.
type CheckIssue struct {
	Path    string
	Message string
}

func (i CheckIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// CheckResult summarizes a strict check of the stored content.
type CheckResult struct {
	Key    string
	Exists bool
	Tasks  int
	Issues []CheckIssue
}

// Valid reports whether no issues were found.
func (r *CheckResult) Valid() bool {
	return len(r.Issues) == 0
}

// Check validates the raw slot content against the task list schema.
// Errors are returned only when the slot itself cannot be read.
func (a *Adapter) Check(ctx context.Context) (*CheckResult, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	result := &CheckResult{Key: a.key}
	data, err := a.slot.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	result.Exists = true

	schema, err := compileTasksSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		result.Issues = append(result.Issues, CheckIssue{Message: fmt.Sprintf("invalid JSON: %v", err)})
		return result, nil
	}
	if items, ok := doc.([]any); ok {
		result.Tasks = len(items)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			result.Issues = append(result.Issues, CheckIssue{Message: err.Error()})
			return result, nil
		}
		collectIssues(ve, &result.Issues)
	}
	return result, nil
}

func compileTasksSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(tasksSchemaURL, bytes.NewReader(tasksSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(tasksSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// collectIssues flattens leaf validation errors.
func collectIssues(err *jsonschema.ValidationError, issues *[]CheckIssue) {
	if len(err.Causes) == 0 {
		*issues = append(*issues, CheckIssue{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectIssues(cause, issues)
	}
}

// pointerToPath turns "/0/text" into "[0].text".
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
