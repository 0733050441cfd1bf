package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-guestbook/internal/api"
	"wedding-guestbook/internal/auth"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Reconcile with the remote store and run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.rsvps.Reconcile(ctx)
	a.messages.Reconcile(ctx)

	gate := auth.NewGate(auth.Config{
		Secret:     a.cfg.AdminSecret,
		SecretHash: a.cfg.AdminSecretHash,
		TTL:        a.cfg.SessionTTL,
	})
	if a.cfg.AdminSecret == "" && a.cfg.AdminSecretHash == "" {
		a.log.Warn().Msg("no admin secret configured, admin surface is locked")
	}

	server := api.NewServer(a.rsvps, a.messages, gate)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Listen(a.cfg.ListenAddr) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.log.Info().Str("signal", sig.String()).Msg("shutting down")
		return server.Shutdown()
	case err := <-errCh:
		return err
	}
}
