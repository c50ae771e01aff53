package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"skillswap/internal/email"
	"skillswap/internal/fakeapi"
	"skillswap/internal/logging"
	"skillswap/internal/models"
)

type devServerFlags struct {
	addr          string
	secret        string
	accessTTL     time.Duration
	rotateRefresh bool
	seed          bool
	smtpHost      string
	smtpPort      int
	smtpUser      string
	smtpFrom      string
}

// devServerCmd runs the in-memory backend so the client can be tried
// without the real service.
func (c *cli) devServerCmd() *cobra.Command {
	var f devServerFlags
	cmd := &cobra.Command{
		Use:    "dev-server",
		Short:  "Run an in-memory marketplace backend for local testing",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := c.logLevel
			if level == "" {
				level = "info"
			}
			logger, err := logging.New(cmd.ErrOrStderr(), level, "text")
			if err != nil {
				return err
			}

			var mailer fakeapi.Mailer = email.NewLogSender(logger)
			if f.smtpHost != "" {
				mailer = email.NewSMTPService(f.smtpHost, f.smtpPort, f.smtpUser, os.Getenv("SKILLSWAP_SMTP_PASSWORD"), f.smtpFrom, logger)
				logger.Info("email configured", "host", f.smtpHost, "port", f.smtpPort)
			}

			srv := fakeapi.New(fakeapi.Options{
				Secret:        f.secret,
				AccessTTL:     f.accessTTL,
				RotateRefresh: f.rotateRefresh,
				Logger:        logger,
				Mailer:        mailer,
			})
			if f.seed {
				if err := seedDemo(srv); err != nil {
					return fmt.Errorf("seeding demo data: %w", err)
				}
				logger.Info("demo users seeded", "password", demoPassword)
			}

			ln, err := net.Listen("tcp", f.addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", f.addr, err)
			}
			httpServer := &http.Server{
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("dev server listening", "addr", ln.Addr().String(), "base_url", "http://"+ln.Addr().String()+fakeapi.APIPrefix)
				if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", "127.0.0.1:8000", "listen address")
	flags.StringVar(&f.secret, "secret", "dev-secret", "token signing secret")
	flags.DurationVar(&f.accessTTL, "access-ttl", 5*time.Minute, "access token lifetime")
	flags.BoolVar(&f.rotateRefresh, "rotate-refresh", false, "issue a new refresh token on every refresh")
	flags.BoolVar(&f.seed, "seed", true, "create demo users, skills and a pending swap")
	flags.StringVar(&f.smtpHost, "smtp-host", "", "send reset mail through this SMTP server instead of logging it")
	flags.IntVar(&f.smtpPort, "smtp-port", 1025, "SMTP port")
	flags.StringVar(&f.smtpUser, "smtp-user", "", "SMTP username (password from SKILLSWAP_SMTP_PASSWORD)")
	flags.StringVar(&f.smtpFrom, "smtp-from", "noreply@skillswap.local", "sender address for reset mail")
	return cmd
}

const demoPassword = "password123"

func seedDemo(srv *fakeapi.Server) error {
	users := []fakeapi.NewUser{
		{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "Ng", Location: "Oslo", Availability: []string{"weekends", "evenings"}},
		{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "Reyes", Location: "Bergen", Availability: []string{"weekdays"}},
		{Email: "carol@example.com", Username: "carol", FirstName: "Carol", LastName: "Kim", Location: "Oslo", Availability: []string{"evenings"}},
	}
	skills := srv.Skills()

	var ids []int64
	for i, u := range users {
		u.Password = demoPassword
		p, err := srv.CreateUser(u)
		if err != nil {
			return err
		}
		ids = append(ids, p.ID)

		offer := skills[i%len(skills)]
		want := skills[(i+1)%len(skills)]
		if _, err := srv.AddUserSkill(p.ID, offer.ID, models.SkillOffered); err != nil {
			return err
		}
		if _, err := srv.AddUserSkill(p.ID, want.ID, models.SkillWanted); err != nil {
			return err
		}
	}

	_, err := srv.SeedSwap(ids[1], ids[0], models.SwapPending)
	return err
}
