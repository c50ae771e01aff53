package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Short: "Read your notifications"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			items, err := a.Notifications.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifications")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t\tTYPE\tMESSAGE\tRECEIVED")
			for _, n := range items {
				mark := ""
				if !n.IsRead {
					mark = "*"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n.ID, mark, n.Type, n.Message, n.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", a.Notifications.Unread())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
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
			if _, err := a.Notifications.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := a.Notifications.MarkRead(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", a.Notifications.Unread())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			if _, err := a.Notifications.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := a.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked as read")
			return nil
		},
	})
	return cmd
}
