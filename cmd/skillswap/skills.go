package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillswap/internal/models"
)

func (c *cli) skillsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "skills", Short: "Browse the catalogue and manage your skills"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the skills catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			skills, err := a.Directory.Skills(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
			for _, s := range skills {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.Category)
			}
			return tw.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "List the skills you offer and want",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			me, _ := a.Session.UserID()
			skills, err := a.Directory.UserSkills(cmd.Context(), me)
			if err != nil {
				return err
			}
			printUserSkills(cmd, skills)
			return nil
		},
	})
	cmd.AddCommand(c.skillsAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <user-skill-id>",
		Short: "Remove one of your skills",
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
			if err := a.Directory.RemoveSkill(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Skill removed")
			return nil
		},
	})
	return cmd
}

func (c *cli) skillsAddCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "add <skill>",
		Short: "Add a skill you offer or want (name or catalogue id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			skillID, err := resolveSkill(cmd.Context(), a.Directory, args[0])
			if err != nil {
				return err
			}
			us, err := a.Directory.AddSkill(cmd.Context(), skillID, models.SkillType(typ))
			if err != nil {
				return err
			}
			name := fmt.Sprintf("#%d", us.SkillID)
			if us.Skill != nil {
				name = us.Skill.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) as #%d\n", name, us.Type, us.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(models.SkillOffered), "offer or want")
	return cmd
}

func printUserSkills(cmd *cobra.Command, skills []models.UserSkill) {
	if len(skills) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No skills listed")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSKILL")
	for _, us := range skills {
		name := fmt.Sprintf("#%d", us.SkillID)
		if us.Skill != nil {
			name = us.Skill.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", us.ID, us.Type, name)
	}
	tw.Flush()
}
