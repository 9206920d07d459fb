// Package cli implements the LifeXP command-line interface using Cobra.
// Every command opens the configured store directly; no server is needed.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lifexp",
	Short: "LifeXP — level up by finishing real tasks",
	Long: `LifeXP turns your tasks and habits into RPG progression.
Complete tasks to earn XP, grow stats and keep streaks alive.
Run 'lifexp seed' for a demo account, or 'lifexp user create NAME' to start.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagUser    string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "Acting user ID (defaults to [cli] user in config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show info logs")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes the command tree with args, writing output to out.
func run(args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.Execute()
}
