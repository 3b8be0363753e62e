package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loomkit/loom/internal/pubsub"
	"github.com/loomkit/loom/internal/reader"
	"github.com/loomkit/loom/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [location...]",
	Short: "Reload definition documents whenever they change",
	Long: `Watch loads the given definition locations (or the configured ones),
then watches the underlying files and reruns the registration pass when
they change. Each pass registers into a fresh registry, so removals take
effect too.

Stops on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := locationsFromArgs(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()

		runPass := func() ([]string, error) {
			r, cleanup, err := newReader(newRegistry())
			if err != nil {
				return nil, err
			}
			defer cleanup()

			events := r.Events().Subscribe(ctx)
			result, err := r.LoadLocations(ctx, locations...)
			if err != nil {
				return nil, err
			}
			reportPass(out, result, drain(events))

			var paths []string
			for _, res := range result.Resources {
				if !res.IsFile() {
					continue
				}
				if path, err := res.File(); err == nil {
					paths = append(paths, path)
				}
			}
			return paths, nil
		}

		paths, err := runPass()
		if err != nil {
			return fmt.Errorf("initial load: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("nothing to watch: no file-backed resources in %v", locations)
		}

		w, err := watcher.New(watcher.Config{
			Paths:       paths,
			DebounceDur: cfg.Watch.Debounce,
		})
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer func() { _ = w.Stop() }()

		onChange, err := w.Start()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		fmt.Fprintf(out, "watching %d file(s), Ctrl-C to stop\n", len(paths))

		for {
			select {
			case <-ctx.Done():
				fmt.Fprintln(out, "stopping")
				return nil
			case <-onChange:
				if _, err := runPass(); err != nil {
					// A broken edit should not kill watch mode.
					fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
				}
			}
		}
	},
}

func drain(ch <-chan pubsub.Event[reader.LoadEvent]) []pubsub.Event[reader.LoadEvent] {
	var out []pubsub.Event[reader.LoadEvent]
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func reportPass(out io.Writer, result *reader.Result, events []pubsub.Event[reader.LoadEvent]) {
	fmt.Fprintf(out, "pass %s: %d definitions, %d problem(s)\n",
		result.PassID, result.Registered, len(result.Problems))
	for _, e := range events {
		switch e.Type {
		case pubsub.ComponentRegisteredEvent:
			fmt.Fprintf(out, "  component %s (%s)\n", e.Payload.Name, e.Payload.Resource)
		case pubsub.AliasRegisteredEvent:
			fmt.Fprintf(out, "  alias %s -> %s\n", e.Payload.Alias, e.Payload.Name)
		case pubsub.ImportProcessedEvent:
			fmt.Fprintf(out, "  import %s (%d document(s))\n", e.Payload.Location, len(e.Payload.Imported))
		}
	}
	for _, p := range result.Problems {
		fmt.Fprintf(out, "  problem: %s\n", p.Error())
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
