package main

import (
	"github.com/spf13/cobra"

	"ctwrap/internal/engine"
	"ctwrap/internal/logging"
	"ctwrap/internal/sim"
)

var runFlags struct {
	output    string
	path      string
	verbosity int
	parallel  bool
	workers   int
	logFormat string
}

var runCmd = &cobra.Command{
	Use:   "run <module> <sweep.yaml>",
	Short: "Run a parameter sweep of a simulation module",
	Long: `Run expands the sweep file's variation into tasks and executes the named
simulation module once per task. Results are written to the output container
declared in the sweep file, which --output and --dir override.`,
	Args: cobra.ExactArgs(2),
	RunE: runSweep,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.output, "output", "", "Name of the output file (extension overrides declared format)")
	f.StringVar(&runFlags.path, "dir", "", "Directory for the output file")
	f.CountVarP(&runFlags.verbosity, "verbosity", "v", "Verbosity level (repeatable)")
	f.BoolVar(&runFlags.parallel, "parallel", false, "Run tasks on a worker pool")
	f.IntVar(&runFlags.workers, "workers", 0, "Worker count for --parallel (0 = half the CPUs)")
	f.StringVar(&runFlags.logFormat, "log-format", "text", "Log format (text or json)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	moduleName, sweepFile := args[0], args[1]

	logging.Init(logging.LevelFromVerbosity(runFlags.verbosity), runFlags.logFormat)
	logger := logging.New("ctwrap")

	factory, err := sim.Lookup(moduleName)
	if err != nil {
		return err
	}

	h, err := engine.FromFile(sweepFile, engine.Options{
		Name: runFlags.output,
		Path: runFlags.path,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	logger.Info("starting sweep",
		"module", moduleName,
		"config", sweepFile,
		"tasks", len(h.Tasks()),
		"output", h.Output().Target(),
	)

	if runFlags.parallel {
		return h.RunParallel(cmd.Context(), factory, runFlags.workers)
	}
	return h.RunSerial(cmd.Context(), factory)
}
