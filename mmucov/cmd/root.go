// Package cmd provides the command-line interface for mmucov.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "mmucov",
	Short: "mmucov extracts the execution paths and the coverage targets " +
		"of a memory subsystem.",
	Long: `mmucov reads a memory subsystem description and lists its ` +
		`trajectories, the concrete paths that realize them, and the ` +
		`address and buffer hazards two accesses can run into. Settings ` +
		`can also come from MMUCOV_* variables or a .env file.`,
}

func init() {
	cobra.OnInitialize(loadEnv)
	addSubsystemFlags(rootCmd)
}

func addSubsystemFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("subsystem", "", "The YAML file describing the subsystem.")
	f.String("demo", "cache",
		"The built-in subsystem to use when no file is given "+
			"(cache or walk).")
	f.String("abstraction", "event",
		"How transitions are labeled (operation, event or transition).")
}

func loadEnv() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		atexit.Fatalf("Error loading .env: %v", err)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
