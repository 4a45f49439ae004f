package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sarchlab/mmucov/coverage"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/monitoring"
	"github.com/sarchlab/mmucov/path"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Search paths while serving the progress over HTTP.",
	Long: "`serve` searches the paths of every trajectory, one trajectory " +
		"after another, and serves the statistics, the progress and the " +
		"subsystem through the monitoring API until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSubsystem(cmd)
		if err != nil {
			atexit.Fatalf("Error loading subsystem: %v", err)
		}

		name, abs, err := abstraction(cmd)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		b, err := searchBuilder(cmd, s)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		rec, err := openRecorder(cmd)
		if err != nil {
			atexit.Fatalf("Error creating recorder: %v", err)
		}

		r := extractor.Trajectories(s, name, abs)
		explorer := coverage.NewExplorer()
		port, _ := cmd.Flags().GetInt("port")

		m := monitoring.NewMonitor().WithPortNumber(port)
		m.RegisterExplorer(explorer)
		m.RegisterObject("subsystem", s)
		m.RegisterObject("graph", r.Graph)

		bar := m.CreateProgressBar("trajectories", uint64(len(r.Trajectories)))
		b = b.WithGraph(r.Graph).WithHook(explorer).WithHook(bar)

		if rec != nil {
			b = b.WithHook(rec)
		}

		actualPort := m.StartServer()
		defer m.StopServer()

		if open, _ := cmd.Flags().GetBool("open"); open {
			err = m.OpenBrowser(actualPort)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}

		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			defer close(done)

			completed := searchTrajectories(ctx, b, r.Trajectories, limit, bar)

			if rec != nil {
				rec.Flush()
			}

			if completed {
				m.CompleteProgressBar(bar)
				fmt.Fprintf(os.Stderr,
					"Search completed, press Ctrl-C to exit\n")
			}
		}()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt

		cancel()
		<-done

		explorer.Report(os.Stdout)
	},
}

// searchTrajectories searches the trajectories one after another, updating
// the bar as it goes. It returns false if the context is cancelled before
// every trajectory is searched.
func searchTrajectories(
	ctx context.Context,
	b path.Builder,
	trajectories []graph.Trajectory,
	limit int,
	bar *monitoring.ProgressBar,
) bool {
	for _, t := range trajectories {
		bar.IncrementInProgress(1)
		completed := drain(ctx, b.WithTrajectory(t).Build(), limit)
		bar.MoveInProgressToFinished(1)

		if !completed {
			return false
		}
	}

	return true
}

// drain pulls up to limit paths out of the iterator. The hooks see every
// one of them. It returns false if the context is cancelled first.
func drain(ctx context.Context, it *path.Iterator, limit int) bool {
	for n := 0; limit <= 0 || n < limit; n++ {
		if ctx.Err() != nil {
			return false
		}

		if _, ok := it.Next(); !ok {
			return true
		}
	}

	return true
}

func init() {
	addSearchFlags(serveCmd)
	addRecordingFlags(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"The port of the monitoring server, 0 for a random one.")
	serveCmd.Flags().Bool("open", false, "Open the monitor in a browser.")
	rootCmd.AddCommand(serveCmd)
}
