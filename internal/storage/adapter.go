package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Adapter moves the whole task list to and from one slot key.
type Adapter struct {
	slot    Slot
	key     string
	logger  *log.Logger
	timeout time.Duration
	lastErr error
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithKey overrides DefaultKey.
func WithKey(key string) AdapterOption {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets the logger used for persistence warnings and errors.
func WithLogger(logger *log.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTimeout bounds each slot operation.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter returns an Adapter over slot.
func NewAdapter(slot Slot, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		slot:   slot,
		key:    DefaultKey,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the slot key.
func (a *Adapter) Key() string {
	return a.key
}

// Save writes the whole task list. Failures are logged, never returned;
// the previously stored list stays intact.
func (a *Adapter) Save(ctx context.Context, tasks []todo.Task) {
	a.lastErr = a.save(ctx, tasks)
	if a.lastErr != nil {
		a.logger.Error("failed to save tasks", "key", a.key, "err", a.lastErr)
	}
}

// Err returns the *PersistError of the most recent Save, or nil if it
// succeeded or nothing was saved yet.
func (a *Adapter) Err() error {
	return a.lastErr
}

func (a *Adapter) save(ctx context.Context, tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return &PersistError{Key: a.key, Err: fmt.Errorf("encode tasks: %w", err)}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.slot.Put(ctx, a.key, data); err != nil {
		return &PersistError{Key: a.key, Err: err}
	}
	return nil
}

// Load reads the stored list. Absent or malformed content yields an empty
// list; malformed content and skipped elements are logged as warnings.
func (a *Adapter) Load(ctx context.Context) []todo.Task {
	tasks, warnings, err := a.load(ctx)
	if err != nil {
		a.logger.Warn("failed to load tasks, starting empty", "key", a.key, "err", err)
		return []todo.Task{}
	}
	for _, w := range warnings {
		a.logger.Warn(w, "key", a.key)
	}
	return tasks
}

func (a *Adapter) load(ctx context.Context) ([]todo.Task, []string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	data, err := a.slot.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return []todo.Task{}, nil, nil
	}
	if err != nil {
		return nil, nil, &MalformedError{Key: a.key, Err: err}
	}
	return decodeTasks(a.key, data)
}

// decodeTasks leniently converts stored JSON into tasks.
func decodeTasks(key string, data []byte) ([]todo.Task, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, &MalformedError{Key: key, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, &MalformedError{Key: key, Err: errors.New("unexpected data after JSON value")}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, nil, &MalformedError{Key: key, Err: fmt.Errorf("expected array, got %s", jsonKind(raw))}
	}

	tasks := make([]todo.Task, 0, len(items))
	elements := make([]int, 0, len(items))
	var warnings []string
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("skipping element %d: expected object, got %s", i, jsonKind(item)))
			continue
		}
		tasks = append(tasks, todo.Task{
			ID:       numberField(obj["id"]),
			Text:     stringField(obj["text"]),
			Deadline: stringField(obj["deadline"]),
		})
		elements = append(elements, i)
	}
	warnings = append(warnings, fixIDs(tasks, elements)...)
	return tasks, warnings, nil
}

// fixIDs gives every task with a missing, non-positive or repeated id the
// next value above the highest id, keeping ids unique. elements maps each
// task back to its position in the stored array for the warnings.
func fixIDs(tasks []todo.Task, elements []int) []string {
	var maxID int64
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	var warnings []string
	seen := make(map[int64]bool, len(tasks))
	for i := range tasks {
		id := tasks[i].ID
		if id > 0 && !seen[id] {
			seen[id] = true
			continue
		}
		maxID++
		tasks[i].ID = maxID
		seen[maxID] = true
		warnings = append(warnings, fmt.Sprintf("element %d: replaced unusable id %d with %d", elements[i], id, maxID))
	}
	return warnings
}

func numberField(v any) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
