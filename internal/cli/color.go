package cli

import (
	"errors"
	"strings"

	"github.com/grvsharma1810/pulse/internal/version"

	"github.com/spf13/cobra"
)

func newGetColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-color",
		Short: "Get your favorite color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.requireLogin(); err != nil {
				return err
			}

			color, err := rt.client.GetFavoriteColor(cmd.Context())
			if err != nil {
				return apiError("fetch favorite color", err)
			}

			if color == "" {
				rt.printf("No favorite color set yet.\n")
				rt.printf("  Use \"pulse set-color <color>\" to set one.\n")
				return nil
			}
			rt.printf("Favorite Color:\n  %s\n", color)
			return nil
		},
	}
}

func newSetColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set-color <color>",
		Short:   "Set your favorite color",
		Example: `  pulse set-color blue
  pulse set-color "#FF5733"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.requireLogin(); err != nil {
				return err
			}

			color := strings.TrimSpace(args[0])
			if color == "" {
				return errors.New("please provide a color")
			}

			saved, err := rt.client.SetFavoriteColor(cmd.Context(), color)
			if err != nil {
				return apiError("set favorite color", err)
			}
			rt.printf("Favorite color set to %q\n", saved)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pulse version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version.Fprint(cmd.OutOrStdout())
			return nil
		},
	}
}
