package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/daemon"
)

func init() {
	userCreateCmd.Flags().StringVar(&userTimezone, "timezone", "", "IANA timezone for streak days (default from config)")
	userCmd.AddCommand(userCreateCmd, userListCmd, userUseCmd)
	rootCmd.AddCommand(userCmd)
}

var userTimezone string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a user at level 1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.Service.CreateUser(cmd.Context(), args[0], userTimezone)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Name, u.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Run 'lifexp user use %s' to make it the default.\n", u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		users, err := d.Service.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users yet. Run 'lifexp user create NAME' to get started.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tTITLE\tXP\tTIMEZONE")
		for _, u := range users {
			marker := ""
			if u.ID == d.Config.CLI.User {
				marker = " *"
			}
			fmt.Fprintf(w, "%s\t%s%s\t%d\t%s\t%d\t%s\n",
				u.ID, u.Name, marker,
				u.Progression.Level, u.Progression.Title,
				u.Progression.TotalXP, u.Timezone,
			)
		}
		return w.Flush()
	},
}

var userUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Set the default user for CLI commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.Service.Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		cfg.CLI.User = p.ID
		if err := daemon.SaveConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now acting as %s (%s)\n", p.Name, p.ID)
		return nil
	},
}
