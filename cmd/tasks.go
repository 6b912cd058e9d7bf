package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/export"
	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/session"
	"github.com/nibzard/tasklist-go/internal/todo"
)

var (
	markStyle     = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	deadlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// addCommand adds one task.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist add", flag.ContinueOnError)
	deadline := fs.String("deadline", "", "Deadline, e.g. 2026-12-31 18:00")

	words, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("usage: tasklist add [-deadline when] <text>")
	}

	store, adapter, closeSlot, err := openStore(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer closeSlot()

	task, err := store.Add(ctx, strings.Join(words, " "), *deadline)
	if err != nil {
		return err
	}
	if err := checkSaved(adapter, fmt.Sprintf("new task #%d", task.ID)); err != nil {
		return err
	}
	fmt.Printf("Added #%d: %s\n", task.ID, task.Text)
	return nil
}

// lsCommand lists tasks in insertion order, optionally filtered.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	search := fs.String("search", "", "Only show tasks containing the term (at least 2 characters)")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		if *search != "" {
			return fmt.Errorf("unexpected arguments: %v", rest)
		}
		*search = strings.Join(rest, " ")
	}

	store, _, closeSlot, err := openStore(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer closeSlot()

	sess := session.New(store, session.WithDateLayout(cfg.DateLayout))
	sess.Search(*search)
	printTaskList(os.Stdout, sess)
	return nil
}

// printTaskList prints the visible tasks of sess with search matches marked.
func printTaskList(w io.Writer, sess *session.Session) {
	tasks := sess.Visible()
	if len(tasks) == 0 {
		if sess.Store().Len() == 0 {
			fmt.Fprintln(w, "No tasks found.")
		} else {
			fmt.Fprintln(w, "No tasks match the search.")
		}
		return
	}
	mark := func(s string) string { return markStyle.Render(s) }
	for _, t := range tasks {
		line := fmt.Sprintf("  #%d  %s", t.ID, filter.HighlightFunc(t.Text, sess.Term(), mark))
		if d := sess.FormatDeadline(t); d != "" {
			line += "  " + deadlineStyle.Render(d)
		}
		fmt.Fprintln(w, line)
	}
}

// editCommand changes the text and/or deadline of a task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist edit", flag.ContinueOnError)
	text := fs.String("text", "", "New text")
	deadline := fs.String("deadline", "", "New deadline")
	clearDeadline := fs.Bool("clear-deadline", false, "Remove the deadline")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: tasklist edit [-text t] [-deadline d | -clear-deadline] <id>")
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["deadline"] && *clearDeadline {
		return fmt.Errorf("-deadline and -clear-deadline are mutually exclusive")
	}
	if !set["text"] && !set["deadline"] && !*clearDeadline {
		return fmt.Errorf("nothing to change: pass -text, -deadline or -clear-deadline")
	}

	store, adapter, closeSlot, err := openStore(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer closeSlot()

	current, ok := store.Get(id)
	if !ok {
		return fmt.Errorf("%w: #%d", todo.ErrTaskNotFound, id)
	}
	newText, newDeadline := current.Text, current.Deadline
	if set["text"] {
		newText = *text
	}
	if set["deadline"] {
		newDeadline = *deadline
	}
	if *clearDeadline {
		newDeadline = ""
	}

	task, err := store.Update(ctx, id, newText, newDeadline)
	if err != nil {
		return err
	}
	if err := checkSaved(adapter, fmt.Sprintf("change to #%d", id)); err != nil {
		return err
	}
	fmt.Printf("Updated #%d: %s\n", task.ID, task.Text)
	return nil
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: tasklist rm <id>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	store, adapter, closeSlot, err := openStore(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer closeSlot()

	if !store.Delete(ctx, id) {
		return fmt.Errorf("%w: #%d", todo.ErrTaskNotFound, id)
	}
	if err := checkSaved(adapter, fmt.Sprintf("deletion of #%d", id)); err != nil {
		return err
	}
	fmt.Printf("Deleted #%d\n", id)
	return nil
}

// exportCommand writes every task as JSON or YAML.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist export", flag.ContinueOnError)
	formatArg := fs.String("format", "json", "Output format (json|yaml)")
	out := fs.String("o", "", "Write to a file instead of stdout")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	format, err := export.ParseFormat(*formatArg)
	if err != nil {
		return err
	}

	store, _, closeSlot, err := openStore(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer closeSlot()

	if *out == "" {
		return export.Write(os.Stdout, store.All(), format)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *out, err)
	}
	if err := export.Write(f, store.All(), format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
