package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillswap/internal/ratings"
)

func (c *cli) ratingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ratings", Short: "Rate users after a swap"}
	cmd.AddCommand(c.ratingsAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "list <user-id>",
		Short: "List ratings a user received",
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
			list, err := a.Ratings.ForUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ratings yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FROM\tSTARS\tFEEDBACK")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.SenderName, r.RatingCount, r.Feedback)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Average %.1f\n", ratings.Average(list))
			return nil
		},
	})
	return cmd
}

func (c *cli) ratingsAddCmd() *cobra.Command {
	var form ratings.Form
	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Rate a user you completed a swap with",
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
			form.Receiver = id
			r, err := a.Ratings.Rate(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d/5\n", r.ReceiverName, r.RatingCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&form.RatingCount, "stars", 5, "rating from 1 to 5")
	cmd.Flags().StringVar(&form.Feedback, "feedback", "", "optional feedback")
	return cmd
}
