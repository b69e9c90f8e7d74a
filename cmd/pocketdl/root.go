package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/kerbaras/pocketdl/pkg/config"
	"github.com/kerbaras/pocketdl/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"token":               "token",
	"log-level":           "logging.level",
	"log-file":            "logging.file",
	"output-dir":          "download.output_dir",
	"year":                "download.year",
	"show-all":            "download.show_all",
	"podcast":             "download.podcast",
	"save-metadata":       "download.save_metadata",
	"dry-run":             "download.dry_run",
	"organize-by-podcast": "download.organize_by_podcast",
}

// invertedFlags switch a boolean setting off when given.
var invertedFlags = map[string]string{
	"no-verify-ssl": "verify_ssl",
	"no-tags":       "download.write_tags",
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	out        io.Writer
}

// NewRootCmd builds the pocketdl command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{v: config.New(), out: os.Stdout, logger: logging.Null()}

	rootCmd := &cobra.Command{
		Use:           "pocketdl",
		Short:         "Download your starred Pocket Casts episodes",
		Long:          "Download starred Pocket Casts episodes, filtered by year or podcast, and keep their audio tags tidy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logCloser != nil {
				c.logCloser.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pocketdl/config.yaml)")
	flags.String("token", "", "Pocket Casts access token (or POCKETDL_TOKEN)")
	flags.String("log-level", "INFO", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write JSON logs to this file instead of stderr")
	flags.Bool("no-verify-ssl", false, "disable TLS certificate verification")

	rootCmd.AddCommand(newDownloadCmd(c))
	rootCmd.AddCommand(newListCmd(c))
	rootCmd.AddCommand(newHistoryCmd(c))
	rootCmd.AddCommand(newTagCmd(c))

	return rootCmd
}

// setup binds the executing command's flags and loads the configuration.
func (c *cli) setup(cmd *cobra.Command) error {
	c.out = cmd.OutOrStdout()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			cobra.CheckErr(c.v.BindPFlag(key, f))
		}
		if key, ok := invertedFlags[f.Name]; ok && f.Changed && f.Value.String() == "true" {
			c.v.Set(key, false)
		}
	})

	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}
	c.logger = logger
	c.logCloser = closer
	c.logger.Debug("configuration loaded", "config", c.v.ConfigFileUsed(), "output", cfg.Download.OutputDir)
	return nil
}

// Execute runs the root command until it finishes or ctx is cancelled.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
