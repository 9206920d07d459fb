package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/daemon"
	"github.com/lifexp-app/lifexp/internal/domain"
)

// openDaemon loads the config and opens the store. CLI commands only log
// warnings unless --verbose is set.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !flagVerbose {
		cfg.Logging.Level = "warn"
	}
	return daemon.NewWithConfig(cfg)
}

// actingUser resolves the user for user-scoped commands.
func actingUser(d *daemon.Daemon) (string, error) {
	if flagUser != "" {
		return flagUser, nil
	}
	if d.Config.CLI.User != "" {
		return d.Config.CLI.User, nil
	}
	return "", errors.New("no user selected: pass --user, run 'lifexp user use ID', or 'lifexp seed' for a demo")
}

// withUser opens the daemon, resolves the acting user and runs fn.
func withUser(fn func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		userID, err := actingUser(d)
		if err != nil {
			return err
		}
		return fn(cmd, args, d, userID)
	}
}

// ─── XP Bar ─────────────────────────────────────────────────────────────────
// [==============>...............]  37%

const barWidth = 30

func xpBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	empty := barWidth - filled

	var bar string
	switch {
	case filled == barWidth:
		bar = strings.Repeat("=", filled)
	case filled > 0:
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	default:
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func habitLabel(t domain.Task) string {
	if !t.IsHabit {
		return "-"
	}
	return strings.ToLower(string(t.HabitFrequency))
}
