package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/kanban-api/internal/client"
	"github.com/yukikurage/kanban-api/internal/dto"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects you own or belong to",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsCreate,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a project and its members",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsShareCmd = &cobra.Command{
	Use:   "share [project-id] [email]",
	Short: "Add a member by email",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsShare,
}

var projectsUnshareCmd = &cobra.Command{
	Use:   "unshare [project-id] [user-id]",
	Short: "Remove a member",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectsUnshare,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsShareCmd)
	projectsCmd.AddCommand(projectsUnshareCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)

	projectsCreateCmd.Flags().String("description", "", "Project description")
	projectsCreateCmd.Flags().StringSlice("member", nil, "Member email (repeatable)")
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	projects, err := api.ListProjects(cmd.Context(), s)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tMEMBERS\tUPDATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.Owner.Name, len(p.Members), p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	description, _ := cmd.Flags().GetString("description")
	members, _ := cmd.Flags().GetStringSlice("member")

	project, err := api.CreateProject(cmd.Context(), s, client.CreateProjectRequest{
		Name:         args[0],
		Description:  description,
		MemberEmails: members,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", project.ID, project.Name)
	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	project, err := api.GetProject(cmd.Context(), s, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d  %s\n", project.ID, project.Name)
	if project.Description != "" {
		fmt.Fprintf(out, "  %s\n", project.Description)
	}
	fmt.Fprintf(out, "  owner:   %s <%s>\n", project.Owner.Name, project.Owner.Email)
	fmt.Fprintf(out, "  members: %s\n", memberList(project.Members))
	return nil
}

func runProjectsShare(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	resp, err := api.ShareProject(cmd.Context(), s, id, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Members: %s\n", memberList(resp.Members))
	return nil
}

func runProjectsUnshare(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	userID, err := parseID(args[1], "user")
	if err != nil {
		return err
	}
	resp, err := api.UnshareProject(cmd.Context(), s, id, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Members: %s\n", memberList(resp.Members))
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	if err := api.DeleteProject(cmd.Context(), s, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
	return nil
}

func memberList(members []dto.UserDTO) string {
	if len(members) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, fmt.Sprintf("%s (%d)", m.Email, m.ID))
	}
	return strings.Join(names, ", ")
}
