package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"me"},
	Short:   "Show level, XP and stats",
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		p, err := d.Service.Profile(cmd.Context(), userID)
		if err != nil {
			return err
		}
		st := p.Progression
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s, Level %d %s\n", p.Name, st.Level, st.Title)
		fmt.Fprintf(out, "XP:           %d total, %d/%d into level\n", st.TotalXP, p.Next.XPIntoLevel, p.Next.XPForNextLevel)
		fmt.Fprintf(out, "Progress:     %s\n", xpBar(p.ProgressPct))
		fmt.Fprintf(out, "Intelligence: %.2f\n", st.StatIntelligence)
		fmt.Fprintf(out, "Strength:     %.2f\n", st.StatStrength)
		fmt.Fprintf(out, "Discipline:   %.2f\n", st.StatDiscipline)
		fmt.Fprintf(out, "Wealth:       %.2f\n", st.StatWealth)
		return nil
	}),
}
