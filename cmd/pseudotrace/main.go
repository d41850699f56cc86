package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pseudotrace/internal/config"
	"pseudotrace/internal/logger"
	"pseudotrace/internal/runner"
	"pseudotrace/internal/server"
	"pseudotrace/pkg/color"
)

var (
	configPath string
	verbose    bool
	noColor    bool

	vars     string
	varsFile string
	addr     string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pseudotrace",
	Short: "Step through Japanese exam-style pseudocode",
	Long: `pseudotrace executes pseudocode written with Japanese keywords
(整数型, 出力する, if/elseif/else/endif, while, for ... ずつ増やす)
one statement at a time, showing variables and output after each step.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if noColor {
			cfg.Logging.NoColor = true
		}

		logger.Init(verbose, cfg.Logging.NoColor)
		if !verbose {
			log.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		}
		color.EnableColor(!cfg.Logging.NoColor && color.IsColorEnabled())

		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Trace a program to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRunner(cmd, args[0]).Run(cmd.Context())
	},
}

var stepCmd = &cobra.Command{
	Use:   "step [file]",
	Short: "Trace a program interactively, one statement per Enter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRunner(cmd, args[0]).Step()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-run the trace whenever the file is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRunner(cmd, args[0]).Watch(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve trace sessions over WebSocket",
	Long: `Starts the trace host. Each WebSocket connection on /trace owns one
session driven by {"op":"start"|"step"|"run"|"reset"|"snapshot"} messages; the current
state of a session is available as JSON on /sessions/{id}.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr != "" {
			cfg.Server.Addr = addr
		}
		return server.New(cfg, log.Default()).ListenAndServe(cmd.Context())
	},
}

func newRunner(cmd *cobra.Command, file string) *runner.Runner {
	return &runner.Runner{
		Verbose:    verbose,
		SourceFile: file,
		Vars:       vars,
		VarsFile:   varsFile,
		MaxSteps:   cfg.MaxSteps,
		Out:        cmd.OutOrStdout(),
		In:         cmd.InOrStdin(),
		Logger:     log.Default(),
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "pseudotrace.yaml", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&noColor, "no-color", "n", false, "Disable colored output")

	for _, c := range []*cobra.Command{runCmd, stepCmd, watchCmd} {
		c.Flags().StringVar(&vars, "vars", "", `Initial variables as a JSON object, e.g. '{"num": 15}'`)
		c.Flags().StringVar(&varsFile, "vars-file", "", "Path to a JSON file of initial variables")
		c.MarkFlagsMutuallyExclusive("vars", "vars-file")
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, e.g. :8080)")

	rootCmd.AddCommand(runCmd, stepCmd, watchCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
