package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/daemon"
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of completions to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent completions",
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		completions, err := d.Service.History(cmd.Context(), userID, historyLimit)
		if err != nil {
			return err
		}
		if len(completions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing completed yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSOURCE\tMIN\tXP\tNOTES")
		for _, c := range completions {
			source := "task " + shortID(c.TaskID)
			if c.QuestID != "" {
				source = "quest " + shortID(c.QuestID)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t+%d\t%s\n",
				c.CompletedAt.Local().Format("2006-01-02 15:04"),
				source, c.ActualMinutes, c.XPEarned, c.Notes,
			)
		}
		return w.Flush()
	}),
}
