package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/app/engagement"
	"github.com/lifexp-app/lifexp/internal/daemon"
)

func init() {
	questCmd.AddCommand(questListCmd, questDoneCmd, questRolloverCmd)
	rootCmd.AddCommand(questCmd)
}

var questCmd = &cobra.Command{
	Use:   "quest",
	Short: "Daily quests",
}

var questListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "today"},
	Short:   "Show today's quests",
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		quests, err := d.Service.TodayQuests(cmd.Context(), userID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tQUEST\tCATEGORY\tDIFFICULTY\tDONE")
		for _, q := range quests {
			done := ""
			if q.Completed {
				done = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", q.ID, q.Title, q.Category, q.Difficulty, done)
		}
		return w.Flush()
	}),
}

var questDoneCmd = &cobra.Command{
	Use:     "done ID",
	Aliases: []string{"complete"},
	Short:   "Complete one of today's quests",
	Args:    cobra.ExactArgs(1),
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		res, err := d.Service.CompleteQuest(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), engagement.Describe(res))
		return nil
	}),
}

var questRolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Issue today's quests to every user now",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		n, err := d.Scheduler.RunNow(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issued %d quests\n", n)
		return nil
	},
}
