package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
)

// doctorCommand checks the config, the storage backend and the stored tasks.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Show where each setting came from")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Println("Tasklist Doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ✅ No config files (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ %s\n", f)
	}
	if *verbose {
		printSources(os.Stdout, cws.Sources)
	}
	fmt.Printf("  Date layout: %s (%s)\n", cfg.DateLayout, time.Now().Format(cfg.DateLayout))
	fmt.Println()

	// Storage
	fmt.Printf("Storage: %s\n", storageLabel(cfg))
	logger := newLogger(cfg, io.Discard)
	slot, err := openSlot(ctx, cfg)
	if err != nil {
		fmt.Printf("  ❌ %v\n", err)
		allOK = false
	} else {
		defer slot.Close()
		fmt.Println("  ✅ Reachable")

		result, err := newAdapter(cfg, slot, logger).Check(ctx)
		switch {
		case err != nil:
			fmt.Printf("  ❌ Read error: %v\n", err)
			allOK = false
		case !result.Exists:
			fmt.Printf("  ⚠️  Nothing stored under %q yet (starts empty)\n", result.Key)
		case result.Valid():
			fmt.Printf("  ✅ Valid (%d tasks)\n", result.Tasks)
		default:
			fmt.Printf("  ❌ Stored tasks do not match the schema (unreadable entries are skipped on load):\n")
			for _, issue := range result.Issues {
				fmt.Printf("     - %s\n", issue)
			}
			allOK = false
		}
	}
	fmt.Println()

	// Log directory
	logDir, err := logging.FindLogDir(cfg.LogDir, logLabel(cfg))
	if err != nil {
		fmt.Printf("Log directory: %s\n", cfg.LogDir)
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("Log directory: %s\n", logDir)
		if _, err := os.Stat(logDir); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("  ⚠️  Not found (will be created by tui)")
			} else {
				fmt.Printf("  ❌ Error: %v\n", err)
				allOK = false
			}
		} else {
			fmt.Println("  ✅ OK")
		}
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// printSources lists each setting with the layer that set it.
func printSources(w io.Writer, sources map[string]config.ConfigSource) {
	fields := make([]string, 0, len(sources))
	for field := range sources {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "    %-24s %s\n", field, sources[field])
	}
}
