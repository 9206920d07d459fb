package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
)

func init() {
	f := calcXPCmd.Flags()
	f.StringVarP(&calcOpts.difficulty, "difficulty", "d", "MEDIUM", "EASY, MEDIUM or HARD")
	f.IntVarP(&calcOpts.minutes, "minutes", "m", 0, "Actual minutes")
	f.IntVarP(&calcOpts.streak, "streak", "s", 0, "Streak days (after this completion)")
	f.BoolVar(&calcOpts.quest, "quest", false, "Apply the daily quest bonus")

	calcCmd.AddCommand(calcXPCmd, calcLevelCmd)
	rootCmd.AddCommand(calcCmd)
}

var calcOpts struct {
	difficulty string
	minutes    int
	streak     int
	quest      bool
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run the progression formulas without touching any data",
}

var calcXPCmd = &cobra.Command{
	Use:   "xp",
	Short: "XP earned by a completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := domain.ParseDifficulty(calcOpts.difficulty)
		if err != nil {
			return err
		}
		xp, err := progression.ComputeTaskXP(domain.CompletionEvent{
			Difficulty:    d,
			ActualMinutes: calcOpts.minutes,
			StreakDays:    calcOpts.streak,
			IsQuestBonus:  calcOpts.quest,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d XP\n", xp)
		return nil
	},
}

var calcLevelCmd = &cobra.Command{
	Use:   "level TOTAL_XP",
	Short: "Level and title for a total XP amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xp, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid XP %q: %w", args[0], err)
		}
		info := progression.ComputeLevel(xp)
		fmt.Fprintf(cmd.OutOrStdout(), "Level %d %s, %d/%d into level %s\n",
			info.Level, progression.TitleForLevel(info.Level),
			info.XPIntoLevel, info.XPForNextLevel, xpBar(info.ProgressPct()))
		return nil
	},
}
