package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/sarchlab/mmucov/coverage"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/recording"
	"github.com/sarchlab/mmucov/subsystem"
	"github.com/sarchlab/mmucov/trajectory"
	"github.com/spf13/cobra"
)

const (
	envSeed       = "MMUCOV_SEED"
	envLookahead  = "MMUCOV_LOOKAHEAD"
	envMergeDepth = "MMUCOV_MERGE_DEPTH"
	envDB         = "MMUCOV_DB"
)

// extractor is shared by all commands of one process.
var extractor = coverage.NewExtractor()

func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64("seed", 0, "The seed of the search order. Env: "+envSeed+".")
	f.Int("lookahead", 4,
		"How far the search looks ahead for the trajectory. Env: "+
			envLookahead+".")
	f.Int("merge-depth", 10,
		"How many unlabeled edges are merged into one program. Env: "+
			envMergeDepth+".")
	f.Int("max-call-depth", 3, "How deep nested memory accesses may go.")
	f.String("op", "", "The operation to search for (read, write or empty).")
	f.Bool("events", false,
		"Reject paths with contradicting buffer events. "+
			"Always on when --op is given.")
	f.Int("limit", 0, "The maximum number of paths, 0 for no limit.")
}

func addRecordingFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "",
		"Record into this SQLite file (without extension). Env: "+envDB+".")
}

// envOverride returns the environment variable that replaces a flag that is
// not set on the command line.
func envOverride(cmd *cobra.Command, flag, env string) (string, bool) {
	if cmd.Flags().Changed(flag) {
		return "", false
	}

	return os.LookupEnv(env)
}

func int64Setting(cmd *cobra.Command, flag, env string) (int64, error) {
	if v, ok := envOverride(cmd, flag, env); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", env, err)
		}

		return n, nil
	}

	return cmd.Flags().GetInt64(flag)
}

func intSetting(cmd *cobra.Command, flag, env string) (int, error) {
	if v, ok := envOverride(cmd, flag, env); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", env, err)
		}

		return n, nil
	}

	return cmd.Flags().GetInt(flag)
}

func stringSetting(cmd *cobra.Command, flag, env string) string {
	if v, ok := envOverride(cmd, flag, env); ok {
		return v
	}

	v, _ := cmd.Flags().GetString(flag)

	return v
}

func loadSubsystem(cmd *cobra.Command) (*subsystem.Subsystem, error) {
	file, _ := cmd.Flags().GetString("subsystem")
	if file != "" {
		return subsystem.LoadFile(file)
	}

	demo, _ := cmd.Flags().GetString("demo")
	switch demo {
	case "cache":
		return fixture.Cache(), nil
	case "walk":
		return fixture.Walk(), nil
	default:
		return nil, fmt.Errorf("unknown demo subsystem %q", demo)
	}
}

func abstraction(cmd *cobra.Command) (string, graph.Abstraction, error) {
	name, _ := cmd.Flags().GetString("abstraction")

	abs, ok := trajectory.Abstractions[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown abstraction %q", name)
	}

	return name, abs, nil
}

func parseOperation(s string) (subsystem.Operation, error) {
	switch s {
	case "":
		return subsystem.OpNone, nil
	case "read":
		return subsystem.OpRead, nil
	case "write":
		return subsystem.OpWrite, nil
	default:
		return subsystem.OpNone, fmt.Errorf("unknown operation %q", s)
	}
}

// searchBuilder creates a path builder from the search flags.
func searchBuilder(
	cmd *cobra.Command,
	s *subsystem.Subsystem,
) (path.Builder, error) {
	seed, err := int64Setting(cmd, "seed", envSeed)
	if err != nil {
		return path.Builder{}, err
	}

	lookahead, err := intSetting(cmd, "lookahead", envLookahead)
	if err != nil {
		return path.Builder{}, err
	}

	mergeDepth, err := intSetting(cmd, "merge-depth", envMergeDepth)
	if err != nil {
		return path.Builder{}, err
	}

	maxCallDepth, err := cmd.Flags().GetInt("max-call-depth")
	if err != nil {
		return path.Builder{}, err
	}

	opName, _ := cmd.Flags().GetString("op")

	op, err := parseOperation(opName)
	if err != nil {
		return path.Builder{}, err
	}

	b := path.MakeBuilder().
		WithSubsystem(s).
		WithRandom(rand.New(rand.NewSource(seed))).
		WithLookaheadDepth(lookahead).
		WithMergeDepth(mergeDepth).
		WithMaxCallDepth(maxCallDepth).
		WithAccessType(path.AccessType{Operation: op})

	// AlwaysFeasible ignores the access type.
	events, _ := cmd.Flags().GetBool("events")
	if events || op != subsystem.OpNone {
		b = b.WithOracle(path.EventOracle{})
	}

	return b, nil
}

// openRecorder returns nil if recording is not requested.
func openRecorder(cmd *cobra.Command) (*recording.Recorder, error) {
	db := stringSetting(cmd, "db", envDB)
	if db == "" {
		return nil, nil
	}

	w, err := recording.New(db)
	if err != nil {
		return nil, err
	}

	return recording.NewRecorder(w), nil
}
