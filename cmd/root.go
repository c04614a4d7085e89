package cmd

import (
	"fmt"
	"strings"

	"github.com/bma-d/sudare/internal/app"
	"github.com/bma-d/sudare/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sudare [flags] <procfile>",
		Short: "Run groups of commands side by side in one terminal",
		Long: `sudare reads a Procfile-like file of "Title[label]: command" lines and shows
one window per title. Pick the running command of the focused window with
0-9 (0 stops it), move focus with n/p or the arrow keys, scroll with j/k,
and quit with Esc. The focused window and the running commands are
remembered per file and restored on the next start.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          run,
	}

	defaults := app.DefaultSettings()
	flags := root.Flags()
	flags.Duration("tick", defaults.Tick, "render loop interval")
	flags.Int("drain-limit", defaults.DrainLimit, "max bytes taken from one process per frame")
	flags.Int("scrollback", defaults.Scrollback, "history lines kept per pane")
	flags.String("shell", defaults.Shell, "shell used to run each command line")
	flags.String("cache-dir", "", "session cache directory (default $XDG_CACHE_HOME or ~/.cache)")
	flags.String("log-file", "", "append structured logs to this file")
	flags.String("log-level", defaults.LogLevel, "log level: trace, debug, info, warn, error")
	flags.Bool("no-restore", false, "start without restoring the previous session")
	return root
}

// newViper layers SUDARE_* environment variables under the command flags.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SUDARE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func settingsFrom(v *viper.Viper) app.Settings {
	return app.Settings{
		Tick:       v.GetDuration("tick"),
		DrainLimit: v.GetInt("drain-limit"),
		Scrollback: v.GetInt("scrollback"),
		Shell:      v.GetString("shell"),
		CacheDir:   v.GetString("cache-dir"),
		LogFile:    v.GetString("log-file"),
		LogLevel:   v.GetString("log-level"),
		NoRestore:  v.GetBool("no-restore"),
	}.Normalize()
}

func run(cmd *cobra.Command, args []string) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}
	settings := settingsFrom(v)

	log, closer, err := logging.Open(settings.LogFile, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := pslog.ContextWithLogger(cmd.Context(), log)
	if err := app.Run(ctx, settings, args[0]); err != nil {
		log.Error("sudare failed", "err", err)
		return err
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
