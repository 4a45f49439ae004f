package cmd

import (
	"fmt"

	"github.com/sarchlab/mmucov/trajectory"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var trajectoriesCmd = &cobra.Command{
	Use:   "trajectories",
	Short: "List the trajectories of a subsystem.",
	Long: "`trajectories` lists the label sequences the subsystem can " +
		"produce. With --abstract, every abstract path is listed with " +
		"the number of subgraphs that realize it.",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSubsystem(cmd)
		if err != nil {
			atexit.Fatalf("Error loading subsystem: %v", err)
		}

		name, abs, err := abstraction(cmd)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		abstract, _ := cmd.Flags().GetBool("abstract")
		if !abstract {
			r := extractor.Trajectories(s, name, abs)
			for _, t := range r.Trajectories {
				fmt.Println(t)
			}

			return
		}

		maxSubgraphs, _ := cmd.Flags().GetInt("max-subgraphs")
		e := trajectory.NewAbstractPathExtractor(s, abs, maxSubgraphs)
		paths := e.Extract()

		for _, key := range e.Keys() {
			ap := paths[key]
			fmt.Printf("%s\t%d\n", ap.Trajectory, len(ap.Subgraphs))
		}
	},
}

func init() {
	trajectoriesCmd.Flags().Bool("abstract", false,
		"List abstract paths instead of trajectories.")
	trajectoriesCmd.Flags().Int("max-subgraphs", 0,
		"The maximum number of subgraphs per abstract path.")
	rootCmd.AddCommand(trajectoriesCmd)
}
