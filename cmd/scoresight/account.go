package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scoresight/internal/backend"
	"scoresight/internal/prediction"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.authSession()
			_, err = s.Login(ctx, email, password)
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(opts *rootOptions) *cobra.Command {
	var req backend.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.authSession()
			_, err = s.Signup(ctx, req)
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			return err
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (required)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("first-name")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.authSession()
			s.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.authSession().Restore(ctx)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Name(), user.Email)
			if user.FavoriteTeam != nil {
				fmt.Fprintf(out, "Favorite team: %s\n", user.FavoriteTeam.Name)
			}
			return nil
		},
	}
}

func newFavoriteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <team>",
		Short: "Set your favorite team",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.authSession()
			if _, err := s.Restore(ctx); err != nil {
				return fmt.Errorf("log in first: %w", err)
			}
			name := strings.Join(args, " ")
			teams := prediction.NewService(a.client, a.client, a.logger).Teams(ctx)
			team, ok := prediction.FindTeam(teams, name)
			if !ok {
				return fmt.Errorf("unknown team %q", name)
			}
			_, err = s.SetFavoriteTeam(ctx, team.Favorite())
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			return err
		},
	}
}

func newFeedbackCmd(opts *rootOptions) *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Leave a testimonial",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.authSession()
			if _, err := s.Restore(ctx); err != nil {
				return fmt.Errorf("log in first: %w", err)
			}
			if err := s.SubmitTestimonial(ctx, rating, comment); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 5, "rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "what you think about Scoresight")
	return cmd
}
