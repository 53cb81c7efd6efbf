package cli

import (
	"errors"

	"github.com/grvsharma1810/pulse/internal/apiclient"
	"github.com/grvsharma1810/pulse/internal/deviceflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoginCommand() *cobra.Command {
	var noWait, noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Pulse using WorkOS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			rt.printf("\nPulse CLI Login\n\n")
			flow := deviceflow.New(rt.client, rt.store, rt.flowOptions(noWait, noBrowser), rt.logger)
			if _, err := flow.Run(cmd.Context()); err != nil {
				rt.logger.Debug("login failed", zap.Stringer("state", flow.State()), zap.Error(err))
				return err
			}

			rt.printf("Authentication successful!\n")
			if user, err := rt.client.CurrentUser(cmd.Context()); err == nil && user.FirstName != "" {
				rt.printf("Welcome %s!\n", user.FirstName)
			} else if err != nil {
				rt.logger.Debug("profile lookup after login failed", zap.Error(err))
			}
			rt.printf("You are now logged in to Pulse CLI\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Open the browser without waiting for Enter")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the verification URL instead of opening a browser")

	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear your authentication session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			if rt.store.Read() == nil {
				rt.printf("You are not logged in.\n")
				return nil
			}
			if err := rt.store.Clear(); err != nil {
				return err
			}
			rt.printf("Successfully logged out.\n")
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			if !rt.store.IsLoggedIn() {
				rt.printf("Not authenticated\n")
				rt.printf("  Run \"pulse login\" to authenticate.\n")
				return nil
			}

			result, err := rt.client.Validate(cmd.Context())
			switch {
			case errors.Is(err, apiclient.ErrUnauthorized) || (err == nil && !result.Valid):
				rt.printf("Session invalid or expired\n")
				rt.printf("  Run \"pulse login\" to authenticate again.\n")
				if err := rt.store.Clear(); err != nil {
					rt.logger.Warn("failed to clear invalid credential", zap.Error(err))
				}
				return nil
			case err != nil:
				return apiError("check status", err)
			}

			rt.printf("Authenticated\n")
			if result.Email != "" {
				rt.printf("  Logged in as: %s\n", result.Email)
			}
			if !result.ExpiresAt.IsZero() {
				rt.printf("  Expires at: %s\n", result.ExpiresAt.Local().Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}
