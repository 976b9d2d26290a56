// Package cmd provides the command-line interface of hsfifo.
package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// EnvPrefix is the prefix of the environment variables that set flag
// defaults. For example, HSFIFO_CAPACITY sets --capacity.
const EnvPrefix = "HSFIFO_"

// Execute runs the command line and exits the program. The atexit handlers,
// such as the ones that flush recorders, run before the program exits.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// NewRootCmd creates the root command with all the subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hsfifo",
		Short: "hsfifo simulates clocked FIFOs with valid/ready handshakes.",
		Long: `hsfifo simulates clocked FIFOs with valid/ready handshakes. ` +
			`It can run a feedback accumulator pipeline built from FIFOs, ` +
			`drive a single FIFO with a scripted input sequence, and ` +
			`summarize recorded transfers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnv(cmd)
		},
	}

	rootCmd.PersistentFlags().String("env-file", "",
		"Load flag defaults from a dotenv file. "+
			"A .env file in the working directory is loaded if present.")
	rootCmd.PersistentFlags().String("log-format", "text",
		"Log format, text or json.")
	rootCmd.PersistentFlags().String("log-level", "info",
		"Log level, debug, info, warn or error.")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newScenarioCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// loadEnv loads the dotenv file and uses the HSFIFO_ variables as the values
// of the flags that are not set on the command line.
func loadEnv(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			return errors.Wrapf(err, "loading %s", envFile)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		err = godotenv.Load()
		if err != nil {
			return errors.Wrap(err, "loading .env")
		}
	}

	var err error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "env-file" {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		setErr := cmd.Flags().Set(f.Name, value)
		if setErr != nil {
			err = errors.Wrapf(setErr, "environment variable %s", envName(f.Name))
		}
	})

	return err
}

func envName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	format, _ := cmd.Flags().GetString("log-format")
	levelName, _ := cmd.Flags().GetString("log-level")

	var level slog.Level

	err := level.UnmarshalText([]byte(levelName))
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", levelName)
	}

	return buildLogger(cmd.ErrOrStderr(), format, level)
}

func buildLogger(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
}
