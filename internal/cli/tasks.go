package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yukikurage/kanban-api/internal/client"
	"github.com/yukikurage/kanban-api/internal/dto"
	"github.com/yukikurage/kanban-api/internal/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List the board, archived or deleted tasks of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksList,
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create [project-id] [title]",
	Short: "Create a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasksCreate,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Change task fields; only flags given are sent",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUpdate,
}

var tasksArchiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Archive a task",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner(api.ArchiveTask, "Archived"),
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Move a task to the trash",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner(api.SoftDeleteTask, "Deleted"),
}

var tasksRestoreCmd = &cobra.Command{
	Use:   "restore [task-id]",
	Short: "Bring an archived or deleted task back to the board",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner(api.RestoreTask, "Restored"),
}

var tasksRemoveCmd = &cobra.Command{
	Use:   "remove [task-id]",
	Short: "Permanently delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRemove,
}

var tasksPurgeCmd = &cobra.Command{
	Use:   "purge [project-id]",
	Short: "Permanently delete every task in a view (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksPurge,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksArchiveCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksRestoreCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	tasksCmd.AddCommand(tasksPurgeCmd)

	tasksListCmd.Flags().String("view", string(client.ViewBoard), "board, archived or deleted")
	tasksPurgeCmd.Flags().String("view", string(client.ViewDeleted), "board, archived or deleted")

	tasksCreateCmd.Flags().String("description", "", "Task description")
	tasksCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or RFC3339)")
	tasksCreateCmd.Flags().String("status", "", "planned, inProgress or done")
	tasksCreateCmd.Flags().Bool("urgent", false, "Mark as urgent")
	tasksCreateCmd.Flags().StringSlice("assign", nil, "Assignee user ID (repeatable)")

	tasksUpdateCmd.Flags().String("title", "", "New title")
	tasksUpdateCmd.Flags().String("description", "", "New description")
	tasksUpdateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or RFC3339)")
	tasksUpdateCmd.Flags().Bool("clear-due", false, "Remove the due date")
	tasksUpdateCmd.Flags().String("status", "", "planned, inProgress or done")
	tasksUpdateCmd.Flags().Bool("urgent", false, "Urgent flag")
	tasksUpdateCmd.Flags().StringSlice("assign", nil, "Replace assignees with these user IDs")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	projectID, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	view, _ := cmd.Flags().GetString("view")

	tasks, err := api.ListTasks(cmd.Context(), s, projectID, client.TaskView(view))
	if err != nil {
		return err
	}
	return printTasks(cmd.OutOrStdout(), tasks)
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	projectID, err := parseID(args[0], "project")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	description, _ := flags.GetString("description")
	status, _ := flags.GetString("status")
	urgent, _ := flags.GetBool("urgent")
	due, _ := flags.GetString("due")
	assign, _ := flags.GetStringSlice("assign")

	req := client.CreateTaskRequest{
		ProjectID:   projectID,
		Title:       args[1],
		Description: description,
		Status:      models.TaskStatus(status),
		Urgent:      urgent,
	}
	if due != "" {
		if req.DueDate, err = parseDue(due); err != nil {
			return err
		}
	}
	if req.AssignedTo, err = parseIDs(assign); err != nil {
		return err
	}

	task, err := api.CreateTask(cmd.Context(), s, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", task.ID, task.Title)
	return nil
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var req client.UpdateTaskRequest
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		req.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		req.Description = &v
	}
	if flags.Changed("due") {
		v, _ := flags.GetString("due")
		if req.DueDate, err = parseDue(v); err != nil {
			return err
		}
	}
	if flags.Changed("clear-due") {
		req.ClearDueDate, _ = flags.GetBool("clear-due")
	}
	if flags.Changed("status") {
		v, _ := flags.GetString("status")
		status := models.TaskStatus(v)
		req.Status = &status
	}
	if flags.Changed("urgent") {
		v, _ := flags.GetBool("urgent")
		req.Urgent = &v
	}
	if flags.Changed("assign") {
		v, _ := flags.GetStringSlice("assign")
		ids, err := parseIDs(v)
		if err != nil {
			return err
		}
		req.AssignedTo = &ids
	}

	task, err := api.UpdateTask(cmd.Context(), s, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s [%s]\n", task.ID, task.Title, task.Status)
	return nil
}

type transition func(ctx context.Context, s client.Session, id uint64) (*dto.TaskDTO, error)

func transitionRunner(fn transition, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := authedSession()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}
		task, err := fn(cmd.Context(), s, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s task %d: %s\n", verb, task.ID, task.Title)
		return nil
	}
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	if err := api.PermanentDeleteTask(cmd.Context(), s, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Permanently deleted task %d\n", id)
	return nil
}

func runTasksPurge(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	projectID, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	view, _ := cmd.Flags().GetString("view")

	n, err := api.PurgeTasks(cmd.Context(), s, projectID, client.TaskView(view))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d %s task(s)\n", n, view)
	return nil
}

func printTasks(out io.Writer, tasks []dto.TaskDTO) error {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tSTATUS\tDUE\tURGENT\tTITLE\tASSIGNED")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		urgent := ""
		if t.Urgent {
			urgent = "!"
		}
		names := make([]string, 0, len(t.AssignedTo))
		for _, u := range t.AssignedTo {
			names = append(names, u.Name)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, due, urgent, t.Title, strings.Join(names, ","))
	}
	return w.Flush()
}

func parseDue(s string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC3339", s)
}

func parseIDs(values []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
