package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/mmucov/coverage"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
	"github.com/sarchlab/mmucov/trajectory"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Search the concrete paths of a subsystem.",
	Long: "`paths` searches one iterator per trajectory and prints the " +
		"distinct paths found. With --key, only the paths of one " +
		"abstract path are searched.",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSubsystem(cmd)
		if err != nil {
			atexit.Fatalf("Error loading subsystem: %v", err)
		}

		b, err := searchBuilder(cmd, s)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		explorer := coverage.NewExplorer()
		b = b.WithHook(explorer)

		rec, err := openRecorder(cmd)
		if err != nil {
			atexit.Fatalf("Error creating recorder: %v", err)
		}

		if rec != nil {
			b = b.WithHook(rec)
			defer rec.Flush()
		}

		paths, err := searchPaths(cmd, s, b)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		for _, p := range paths {
			fmt.Println(p)
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			explorer.Report(os.Stdout)
		}
	},
}

func searchPaths(
	cmd *cobra.Command,
	s *subsystem.Subsystem,
	b path.Builder,
) ([]*path.Path, error) {
	name, abs, err := abstraction(cmd)
	if err != nil {
		return nil, err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	labels, _ := cmd.Flags().GetStringSlice("key")
	if len(labels) == 0 {
		r := extractor.Trajectories(s, name, abs)
		e := path.NewExtractor(b.WithGraph(r.Graph), r.Trajectories)

		return e.Distinct(limit), nil
	}

	t := make(graph.Trajectory, len(labels))
	for i, l := range labels {
		t[i] = graph.Label(l)
	}

	c, ok := trajectory.NewAbstractPathExtractor(s, abs, 0).Chooser(t.Key(), b)
	if !ok {
		return nil, fmt.Errorf("no abstract path %s", t)
	}

	// Once every iterator is exhausted, Get repeats earlier paths.
	for c.NumLive() > 0 && (limit <= 0 || len(c.History()) < limit) {
		if c.Get() == nil {
			break
		}
	}

	return distinct(c.History()), nil
}

func distinct(paths []*path.Path) []*path.Path {
	seen := make(map[string]bool)

	var out []*path.Path

	for _, p := range paths {
		if !seen[p.Key()] {
			seen[p.Key()] = true
			out = append(out, p)
		}
	}

	return out
}

func init() {
	addSearchFlags(pathsCmd)
	addRecordingFlags(pathsCmd)
	pathsCmd.Flags().StringSlice("key", nil,
		"Only search the abstract path with these labels, "+
			"e.g. TLB.HIT,L1.MISS.")
	pathsCmd.Flags().Bool("stats", false,
		"Print the search statistics of every trajectory.")
	rootCmd.AddCommand(pathsCmd)
}
