package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillswap/internal/directory"
	"skillswap/internal/ratings"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Browse the user directory"}
	cmd.AddCommand(c.usersSearchCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a user's profile, skills and rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			user, err := a.Directory.User(cmd.Context(), id)
			if err != nil {
				return err
			}
			skills, err := a.Directory.UserSkills(cmd.Context(), id)
			if err != nil {
				return err
			}
			received, err := a.Ratings.ForUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			printProfile(cmd, user, a.API.BaseURL())
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d ratings, average %.1f\n\n", len(received), ratings.Average(received))
			printUserSkills(cmd, skills)
			return nil
		},
	})
	return cmd
}

func (c *cli) usersSearchCmd() *cobra.Command {
	var q directory.SearchQuery
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search public profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Search = args[0]
			}
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			page, err := a.Directory.SearchUsers(cmd.Context(), q)
			if err != nil {
				return err
			}
			if page.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tRATING\tAVAILABILITY")
			for _, u := range page.Results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\n", u.ID, u.DisplayName(), u.Location, u.Rating, strings.Join(u.Availability, ","))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(page.Results), page.Count)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Skill, "skill", "", "only users offering this skill")
	f.StringVar(&q.Availability, "availability", "", "only users available at this time")
	f.IntVar(&q.Page, "page", 1, "result page")
	return cmd
}
