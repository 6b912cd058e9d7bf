// Package logging configures leveled loggers and per-run log files.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogExt is the extension of per-run log files.
const RunLogExt = ".log"

// followInterval is how often a followed log is polled for new data.
var followInterval = 200 * time.Millisecond

// RunLogger owns the log file of one interactive session.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
}

// SessionLabel names the log directory of a task list. Sessions on the same
// backend and key share a directory, whichever directory they start from.
func SessionLabel(backend, key string) string {
	return slugify(backend) + "-" + slugify(key)
}

// NewRunLogger creates <baseDir>/<label>/<run-id>.log.
func NewRunLogger(baseDir, label string) (*RunLogger, error) {
	dir, err := FindLogDir(baseDir, label)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID(time.Now())
	path := filepath.Join(dir, id+RunLogExt)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return &RunLogger{Dir: dir, RunID: id, LogPath: path, file: file}, nil
}

// Writer returns the log file.
func (r *RunLogger) Writer() io.Writer {
	return r.file
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// FindLogDir returns the log directory for label without creating it.
func FindLogDir(baseDir, label string) (string, error) {
	if strings.TrimSpace(baseDir) == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve log dir: %w", err)
	}
	return filepath.Join(abs, slugify(label)), nil
}

// slugify keeps ASCII letters, digits, '.', '_' and '-' and collapses every
// other run of characters into one underscore.
func slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		ok := r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' || r == '.' || r == '_' || r == '-')
		if !ok {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 || strings.Trim(b.String(), ".") == "" {
		return "default"
	}
	return b.String()
}

// runID sorts by start time; the pid separates sessions started in the same second.
func runID(t time.Time) string {
	return fmt.Sprintf("%s-%d", t.UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatestLog returns the most recently modified run log in dir, or ""
// when there is none.
func FindLatestLog(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read log dir: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != RunLogExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		// Equal times fall back to the name, which sorts by start time.
		mod := info.ModTime()
		if latest == "" || mod.After(latestMod) || mod.Equal(latestMod) && e.Name() > filepath.Base(latest) {
			latest = filepath.Join(dir, e.Name())
			latestMod = mod
		}
	}
	return latest, nil
}

// TailLog copies the last n lines of the log at path to w (all of it when
// n <= 0). With follow set it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := seekLastLines(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}
	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}

// seekLastLines positions file at the start of its last n lines. A trailing
// newline ends the last line rather than starting an empty one.
func seekLastLines(file *os.File, n int) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	const chunk = 4096
	buf := make([]byte, chunk)
	end := info.Size()
	offset := end
	newlines := 0

	for offset > 0 {
		size := int64(chunk)
		if offset < size {
			size = offset
		}
		offset -= size
		if _, err := file.ReadAt(buf[:size], offset); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		block := buf[:size]
		for i := len(block) - 1; i >= 0; i-- {
			if block[i] != '\n' || offset+int64(i) == end-1 {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(offset+int64(i)+1, io.SeekStart)
				return err
			}
		}
	}
	_, err = file.Seek(0, io.SeekStart)
	return err
}
