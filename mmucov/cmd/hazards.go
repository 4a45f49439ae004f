package cmd

import (
	"fmt"

	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/subsystem"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var hazardsCmd = &cobra.Command{
	Use:   "hazards",
	Short: "List the coverage targets of a subsystem.",
	Long: "`hazards` lists the address and buffer hazards of every address " +
		"space and buffer. With --dependencies N, it also searches two " +
		"paths and lists up to N ways the second can depend on the first.",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSubsystem(cmd)
		if err != nil {
			atexit.Fatalf("Error loading subsystem: %v", err)
		}

		rec, err := openRecorder(cmd)
		if err != nil {
			atexit.Fatalf("Error creating recorder: %v", err)
		}

		hazards := allHazards(s)
		for _, h := range hazards {
			fmt.Println(h)
		}

		if rec != nil {
			rec.RecordHazards(hazards)
			rec.Flush()
		}

		n, _ := cmd.Flags().GetInt("dependencies")
		if n <= 0 {
			return
		}

		b, err := searchBuilder(cmd, s)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		paths, err := searchPaths(cmd, s, b)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		if len(paths) < 2 {
			atexit.Fatalf("Error: found %d paths, need 2", len(paths))
		}

		fmt.Printf("\n%s\n%s\n", paths[0], paths[1])

		for _, d := range extractor.Dependencies(s, paths[0], paths[1], n) {
			fmt.Println(d)
		}
	},
}

func allHazards(s *subsystem.Subsystem) []*hazard.Hazard {
	var hazards []*hazard.Hazard

	for i := range s.Addresses() {
		hazards = append(hazards,
			extractor.AddressHazards(s, subsystem.AddressID(i))...)
	}

	for i := range s.Buffers() {
		hazards = append(hazards,
			extractor.BufferHazards(s, subsystem.BufferID(i))...)
	}

	return hazards
}

func init() {
	addSearchFlags(hazardsCmd)
	addRecordingFlags(hazardsCmd)
	hazardsCmd.Flags().StringSlice("key", nil,
		"Only search paths of the abstract path with these labels.")
	hazardsCmd.Flags().Int("dependencies", 0,
		"The maximum number of dependencies between two paths to list.")
	rootCmd.AddCommand(hazardsCmd)
}
