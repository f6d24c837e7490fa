package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd creates replay command with its own viper instance
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "mot-replay",
		Short: "Assign persistent track ids to per-frame detections",
		Long: `mot-replay reads detector output as JSON lines, one frame per line:

  {"frame": 1, "detections": [{"bbox": [x1, y1, x2, y2], "confidence": 0.9, "class": "person"}]}

and writes tracked objects as JSON lines, one frame per line:

  {"frame": 1, "tracks": [{"id": 1, "bbox": [x1, y1, x2, y2], "class": "person", "confidence": 0.9, "label": "ID:1 person 0.90", "state": "active"}]}`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "config file (yaml, json or toml)")
	flags.StringP("input", "i", "-", "detections file, - for stdin")
	flags.StringP("output", "o", "-", "tracks file, - for stdout")
	flags.Float64("max-distance", 0, "association gate in pixels (default 60)")
	flags.Int("max-missed", 0, "frames a track survives without detections (default 10)")
	flags.String("estimator", "", "motion estimator: constant-velocity or kalman2d")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("input", flags.Lookup("input"))
	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("tracker.max_distance", flags.Lookup("max-distance"))
	_ = v.BindPFlag("tracker.max_missed", flags.Lookup("max-missed"))
	_ = v.BindPFlag("estimator", flags.Lookup("estimator"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))

	return cmd
}

func initConfig(v *viper.Viper) error {
	// Set defaults first so they're available even without a config file
	SetDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("MOT")
	// e.g., MOT_TRACKER_MAX_DISTANCE for tracker.max_distance
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFile := v.GetString("config")
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "can't read config file %s", cfgFile)
	}
	return nil
}

func runReplay(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := Load(v)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

	tracker, err := cfg.NewTracker(logger)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(v.GetString("input"), cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(v.GetString("output"), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("replay started",
		"session_id", tracker.SessionID().String(),
		"max_distance", cfg.Tracker.MaxDistance,
		"max_missed", cfg.Tracker.MaxMissed,
		"estimator", cfg.Estimator,
	)
	summary, err := Replay(in, out, tracker, logger)
	if closeErr := closeOut(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, "can't close output")
	}
	if err != nil {
		return err
	}
	logger.Info("replay finished",
		"session_id", tracker.SessionID().String(),
		"frames", summary.Frames,
		"identities", summary.Identities,
		"malformed", summary.Malformed,
		"skipped", summary.Skipped,
	)
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't open input %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't create output %s", path)
	}
	return f, f.Close, nil
}
