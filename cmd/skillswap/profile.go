package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillswap/internal/mediaurl"
	"skillswap/internal/models"
	"skillswap/internal/session"
)

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Show or edit your profile"}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			user, err := a.Session.RefreshProfile(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd, user, a.API.BaseURL())
			return nil
		},
	})
	cmd.AddCommand(c.profileUpdateCmd())
	return cmd
}

func (c *cli) profileUpdateCmd() *cobra.Command {
	var (
		firstName, lastName, location, bio string
		availability, avatarPath           string
		private                            bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openSignedIn(cmd)
			if err != nil {
				return err
			}
			current, err := a.Session.RefreshProfile(cmd.Context())
			if err != nil {
				return err
			}

			update := session.ProfileUpdate{
				FirstName:    current.FirstName,
				LastName:     current.LastName,
				Location:     current.Location,
				Bio:          current.Bio,
				Availability: current.Availability,
				IsPrivate:    current.IsPrivate,
			}
			flags := cmd.Flags()
			if flags.Changed("first-name") {
				update.FirstName = firstName
			}
			if flags.Changed("last-name") {
				update.LastName = lastName
			}
			if flags.Changed("location") {
				update.Location = location
			}
			if flags.Changed("bio") {
				update.Bio = bio
			}
			if flags.Changed("availability") {
				update.Availability = splitList(availability)
			}
			if flags.Changed("private") {
				update.IsPrivate = private
			}
			if avatarPath != "" {
				img, err := a.Avatars.PrepareFile(avatarPath)
				if err != nil {
					return fmt.Errorf("preparing avatar: %w", err)
				}
				update.Avatar = img
			}

			user, err := a.Session.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			printProfile(cmd, user, a.API.BaseURL())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&firstName, "first-name", "", "first name")
	f.StringVar(&lastName, "last-name", "", "last name")
	f.StringVar(&location, "location", "", "city or region")
	f.StringVar(&bio, "bio", "", "short bio")
	f.StringVar(&availability, "availability", "", "comma separated availability")
	f.BoolVar(&private, "private", false, "hide the profile from the directory")
	f.StringVar(&avatarPath, "avatar", "", "image file to upload as profile picture")
	return cmd
}

func printProfile(cmd *cobra.Command, u *models.UserProfile, apiBaseURL string) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", u.ID)
	fmt.Fprintf(tw, "Name\t%s\n", u.DisplayName())
	fmt.Fprintf(tw, "Username\t%s\n", u.Username)
	if u.Email != "" {
		fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	}
	if u.Location != "" {
		fmt.Fprintf(tw, "Location\t%s\n", u.Location)
	}
	if u.Bio != "" {
		fmt.Fprintf(tw, "Bio\t%s\n", u.Bio)
	}
	if len(u.Availability) > 0 {
		fmt.Fprintf(tw, "Availability\t%s\n", strings.Join(u.Availability, ", "))
	}
	fmt.Fprintf(tw, "Rating\t%.1f (%d completed swaps)\n", u.Rating, u.CompletedSwaps)
	fmt.Fprintf(tw, "Private\t%t\n", u.IsPrivate)
	if img := mediaurl.Resolve(apiBaseURL, u.ProfileImage); img != "" {
		fmt.Fprintf(tw, "Picture\t%s\n", img)
	}
	tw.Flush()
}
