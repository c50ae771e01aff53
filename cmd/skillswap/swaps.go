package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillswap/internal/app"
	"skillswap/internal/directory"
	"skillswap/internal/models"
	"skillswap/internal/swap"
)

func (c *cli) swapsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "swaps", Short: "Manage swap requests"}
	cmd.AddCommand(c.swapsListCmd())
	cmd.AddCommand(c.swapsCreateCmd())
	cmd.AddCommand(c.swapTransitionCmd("accept", "Accept an incoming request", (*swap.Coordinator).Accept))
	cmd.AddCommand(c.swapTransitionCmd("reject", "Reject an incoming request", (*swap.Coordinator).Reject))
	cmd.AddCommand(c.swapTransitionCmd("complete", "Mark an accepted swap as done", (*swap.Coordinator).Complete))
	cmd.AddCommand(c.swapTransitionCmd("cancel", "Withdraw a request or call off an accepted swap", (*swap.Coordinator).Cancel))
	return cmd
}

func (c *cli) swapsListCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your swap requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := swap.ParseFilter(filter)
			if err != nil {
				return err
			}
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			if err := a.Swaps.Refresh(cmd.Context()); err != nil {
				return err
			}

			list := a.Swaps.List(f)
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No swap requests")
				return nil
			}
			me, _ := a.Session.UserID()
			names := skillNames(cmd.Context(), a)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tFROM\tTO\tOFFERED\tREQUESTED\tCREATED")
			for _, r := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Status, party(r.FromUserID, me), party(r.ToUserID, me),
					names(r.OfferedSkillID), names(r.RequestedSkillID), r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "incoming, outgoing, active, completed, cancelled, rejected or all")
	return cmd
}

func (c *cli) swapsCreateCmd() *cobra.Command {
	var (
		to                    int64
		offered, requested    string
		message, when, length string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Send a swap request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			offeredID, err := resolveSkill(cmd.Context(), a.Directory, offered)
			if err != nil {
				return err
			}
			requestedID, err := resolveSkill(cmd.Context(), a.Directory, requested)
			if err != nil {
				return err
			}

			r, err := a.Swaps.Create(cmd.Context(), swap.CreateForm{
				ToUserID:         to,
				OfferedSkillID:   offeredID,
				RequestedSkillID: requestedID,
				Message:          message,
				PreferredTime:    when,
				Duration:         length,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swap request #%d sent (%s)\n", r.ID, r.Status)
			return nil
		},
	}
	f := cmd.Flags()
	f.Int64Var(&to, "to", 0, "id of the user to ask")
	f.StringVar(&offered, "offer", "", "skill you offer (name or id)")
	f.StringVar(&requested, "want", "", "skill you want (name or id)")
	f.StringVar(&message, "message", "", "message to the other user")
	f.StringVar(&when, "time", "", "preferred time")
	f.StringVar(&length, "duration", "", "1-hour, 2-hours, half-day, full-day or multiple-sessions")
	return cmd
}

type transitionFunc func(*swap.Coordinator, context.Context, int64) (*models.SwapRequest, error)

func (c *cli) swapTransitionCmd(use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
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
			// A fresh process starts with an empty cache.
			if err := a.Swaps.Refresh(cmd.Context()); err != nil {
				return err
			}

			r, err := fn(a.Swaps, cmd.Context(), id)
			if err != nil {
				if r != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Swap request #%d is now %s\n", r.ID, r.Status)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swap request #%d is now %s\n", r.ID, r.Status)
			return nil
		},
	}
}

func party(id, me int64) string {
	if id == me {
		return "you"
	}
	return "#" + strconv.FormatInt(id, 10)
}

// skillNames maps skill ids to catalogue names, falling back to the id.
func skillNames(ctx context.Context, a *app.App) func(int64) string {
	byID := map[int64]string{}
	if skills, err := a.Directory.Skills(ctx); err == nil {
		for _, s := range skills {
			byID[s.ID] = s.Name
		}
	} else {
		a.Logger.Warn("error loading skills catalogue", "error", err)
	}
	return func(id int64) string {
		if name, ok := byID[id]; ok {
			return name
		}
		return "#" + strconv.FormatInt(id, 10)
	}
}

// resolveSkill accepts a catalogue id or a skill name.
func resolveSkill(ctx context.Context, d *directory.Directory, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	if ref == "" {
		return 0, nil
	}
	skill, ok, err := d.SkillByName(ctx, ref)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("unknown skill %q, see `skillswap skills list`", ref)
	}
	return skill.ID, nil
}
