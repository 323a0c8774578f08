package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekagra-app/ekagra/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (requires login)",
}

// Each subcommand keeps its own flag variables; sharing them would let
// the last registration clobber the others' defaults.
var (
	addCategory  string
	addPriority  string
	addEstimated int

	listStatus   string
	listCategory string
	listPriority string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := remoteBackend()
		if err != nil {
			return err
		}

		task, err := api.CreateTask(context.Background(), args[0], addCategory,
			models.TaskPriority(addPriority), addEstimated)
		if err != nil {
			return err
		}
		fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := remoteBackend()
		if err != nil {
			return err
		}

		tasks, err := api.ListTasks(context.Background(), models.TaskFilter{
			Status:   models.TaskStatus(listStatus),
			Category: listCategory,
			Priority: models.TaskPriority(listPriority),
		})
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}
		for _, t := range tasks {
			fmt.Printf("%s  [%s/%s]  %s (%d/%d 🍅)\n",
				t.ID, t.Status, t.Priority, t.Title, t.CompletedPomodoros, t.EstimatedPomodoros)
		}
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := remoteBackend()
		if err != nil {
			return err
		}

		task, err := api.CompleteTask(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Completed: %s\n", task.Title)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&addCategory, "category", "general", "task category")
	taskAddCmd.Flags().StringVar(&addPriority, "priority", "", "priority (low, medium, high)")
	taskAddCmd.Flags().IntVar(&addEstimated, "pomodoros", 0, "estimated pomodoros")

	taskListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	taskListCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	taskListCmd.Flags().StringVar(&listPriority, "priority", "", "filter by priority")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
}
