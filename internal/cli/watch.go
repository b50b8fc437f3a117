package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce batches bursts of file-system events (a copy of many
// certificates at once) into a single run.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the intake directory and triage on arrival",
	Long: `Watch the initial (intake) directory and run a full triage whenever new
certificate files appear.

Each trigger performs the same two sequential passes as "certtriage run".
Bursts of arrivals are debounced into a single run. The command keeps
running until interrupted (SIGINT/SIGTERM).

Examples:
  certtriage watch --config /etc/certtriage.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		eng, outMgr, code := setupEngine(cmd)
		if eng == nil {
			os.Exit(code)
		}
		defer outMgr.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := watchLoop(ctx, cfg.Dirs.Initial, watchDebounce, func() {
			if code := eng.Run(ctx); code != 0 {
				fmt.Fprintf(os.Stderr, "run finished with exit code %d\n", code)
			}
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
	},
}

// watchLoop monitors dir and calls trigger once per debounced burst of
// create/write events. It runs until ctx is cancelled. An initial trigger
// fires immediately so certificates that arrived before startup are not
// stranded until the next event.
func watchLoop(ctx context.Context, dir string, debounceAfter time.Duration, trigger func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s for new certificates...\n", dir)
	trigger()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only react to arrivals. Many transfer tools write via rename
			// (atomic move into place), so catch fsnotify.Create as well as
			// fsnotify.Write.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			debounce = time.After(debounceAfter)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)

		case <-debounce:
			debounce = nil
			trigger()
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	registerFlags(watchCmd)
}
