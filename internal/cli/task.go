package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifexp-app/lifexp/internal/app/engagement"
	"github.com/lifexp-app/lifexp/internal/daemon"
	"github.com/lifexp-app/lifexp/internal/domain"
)

func init() {
	f := taskAddCmd.Flags()
	f.StringVarP(&taskOpts.category, "category", "c", "", "INTELLIGENCE, STRENGTH, DISCIPLINE or WEALTH")
	f.StringVarP(&taskOpts.difficulty, "difficulty", "d", "", "EASY, MEDIUM or HARD")
	f.IntVarP(&taskOpts.minutes, "minutes", "m", 0, "Estimated minutes")
	f.BoolVar(&taskOpts.habit, "habit", false, "Track a streak for this task")
	f.StringVar(&taskOpts.frequency, "frequency", "", "Habit frequency: DAILY or WEEKLY")
	f.StringVar(&taskOpts.description, "description", "", "Longer description")
	f.StringSliceVar(&taskOpts.tags, "tags", nil, "Comma-separated tags")
	taskAddCmd.MarkFlagRequired("category")
	taskAddCmd.MarkFlagRequired("difficulty")
	taskAddCmd.MarkFlagRequired("minutes")

	f = taskEditCmd.Flags()
	f.StringVar(&taskOpts.title, "title", "", "New title")
	f.StringVarP(&taskOpts.category, "category", "c", "", "New category")
	f.StringVarP(&taskOpts.difficulty, "difficulty", "d", "", "New difficulty")
	f.IntVarP(&taskOpts.minutes, "minutes", "m", 0, "New estimated minutes")
	f.BoolVar(&taskOpts.habit, "habit", false, "Track a streak for this task")
	f.StringVar(&taskOpts.frequency, "frequency", "", "New habit frequency")
	f.StringVar(&taskOpts.description, "description", "", "New description")
	f.StringSliceVar(&taskOpts.tags, "tags", nil, "Replace tags")

	f = taskListCmd.Flags()
	f.StringVarP(&taskOpts.category, "category", "c", "", "Only this category")
	f.StringVarP(&taskOpts.difficulty, "difficulty", "d", "", "Only this difficulty")
	f.BoolVar(&taskOpts.habit, "habits", false, "Only habits")

	taskDoneCmd.Flags().IntVarP(&taskOpts.minutes, "minutes", "m", 0, "Actual minutes spent (default: the estimate)")
	taskDoneCmd.Flags().StringVar(&taskOpts.notes, "notes", "", "Notes for the history")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskEditCmd, taskDoneCmd, taskRmCmd)
	rootCmd.AddCommand(taskCmd)
}

var taskOpts struct {
	title       string
	category    string
	difficulty  string
	minutes     int
	habit       bool
	frequency   string
	description string
	tags        []string
	notes       string
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage and complete tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		in := domain.NewTask{
			Title:            args[0],
			Description:      taskOpts.description,
			EstimatedMinutes: taskOpts.minutes,
			IsHabit:          taskOpts.habit,
			HabitFrequency:   domain.HabitFrequency(strings.ToUpper(taskOpts.frequency)),
			Tags:             taskOpts.tags,
		}
		var err error
		if in.Category, err = domain.ParseStatCategory(taskOpts.category); err != nil {
			return err
		}
		if in.Difficulty, err = domain.ParseDifficulty(taskOpts.difficulty); err != nil {
			return err
		}

		t, err := d.Service.CreateTask(cmd.Context(), userID, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %q\n", t.ID, t.Title)
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, newest first",
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		var f domain.TaskFilter
		if taskOpts.category != "" {
			c, err := domain.ParseStatCategory(taskOpts.category)
			if err != nil {
				return err
			}
			f.Category = &c
		}
		if taskOpts.difficulty != "" {
			diff, err := domain.ParseDifficulty(taskOpts.difficulty)
			if err != nil {
				return err
			}
			f.Difficulty = &diff
		}
		if cmd.Flags().Changed("habits") {
			f.IsHabit = &taskOpts.habit
		}

		tasks, err := d.Service.ListTasks(cmd.Context(), userID, f)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks. Run 'lifexp task add TITLE -c CATEGORY -d DIFFICULTY -m MINUTES'.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tDIFFICULTY\tMIN\tHABIT\tSTREAK\tBEST")
		for _, t := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
				t.ID, t.Title, t.Category, t.Difficulty,
				t.EstimatedMinutes, habitLabel(t),
				t.StreakCurrent, t.StreakLongest,
			)
		}
		return w.Flush()
	}),
}

var taskEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a task",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		var p domain.TaskPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			p.Title = &taskOpts.title
		}
		if flags.Changed("description") {
			p.Description = &taskOpts.description
		}
		if flags.Changed("category") {
			c, err := domain.ParseStatCategory(taskOpts.category)
			if err != nil {
				return err
			}
			p.Category = &c
		}
		if flags.Changed("difficulty") {
			diff, err := domain.ParseDifficulty(taskOpts.difficulty)
			if err != nil {
				return err
			}
			p.Difficulty = &diff
		}
		if flags.Changed("minutes") {
			p.EstimatedMinutes = &taskOpts.minutes
		}
		if flags.Changed("habit") {
			p.IsHabit = &taskOpts.habit
		}
		if flags.Changed("frequency") {
			freq := domain.HabitFrequency(strings.ToUpper(taskOpts.frequency))
			p.HabitFrequency = &freq
		}
		if flags.Changed("tags") {
			p.Tags = taskOpts.tags
		}

		t, err := d.Service.UpdateTask(cmd.Context(), userID, args[0], p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s %q\n", t.ID, t.Title)
		return nil
	}),
}

var taskDoneCmd = &cobra.Command{
	Use:     "done ID",
	Aliases: []string{"complete"},
	Short:   "Complete a task and earn XP",
	Args:    cobra.ExactArgs(1),
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		taskID := args[0]
		minutes := taskOpts.minutes
		if !cmd.Flags().Changed("minutes") {
			t, err := d.Service.GetTask(cmd.Context(), userID, taskID)
			if err != nil {
				return err
			}
			minutes = t.EstimatedMinutes
		}

		res, err := d.Service.CompleteTask(cmd.Context(), userID, taskID, engagement.CompleteTaskInput{
			ActualMinutes: minutes,
			Notes:         taskOpts.notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), engagement.Describe(res))
		return nil
	}),
}

var taskRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a task (its history is kept)",
	Args:    cobra.ExactArgs(1),
	RunE: withUser(func(cmd *cobra.Command, args []string, d *daemon.Daemon, userID string) error {
		if err := d.Service.DeleteTask(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	}),
}
