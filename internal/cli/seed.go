package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo user and sample tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		u, created, err := d.Service.Seed(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if created {
			fmt.Fprintf(out, "Seeded %s (%s) with 3 tasks\n", u.Name, u.ID)
		} else {
			fmt.Fprintf(out, "Demo data already present (%s)\n", u.ID)
		}
		fmt.Fprintf(out, "Try: lifexp --user %s status\n", u.ID)
		return nil
	},
}
