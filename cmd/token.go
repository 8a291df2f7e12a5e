package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Telegram bot token",
	}
	cmd.AddCommand(newTokenSetCmd(app), newTokenClearCmd(app))
	return cmd
}

func newTokenSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the bot token read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%w: no token on stdin", domain.ErrInputValidation)
			}
			token := strings.TrimSpace(line)
			if token == "" {
				return fmt.Errorf("%w: token is empty", domain.ErrInputValidation)
			}

			if err := app.secrets.Put(cmd.Context(), app.cfg.Telegram.TokenSecret, token); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored token as %s\n", app.cfg.Telegram.TokenSecret)
			return err
		},
	}
}

func newTokenClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored bot token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := app.secrets.Delete(cmd.Context(), app.cfg.Telegram.TokenSecret)
			if errors.Is(err, domain.ErrSecretNotFound) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No stored token.")
				return err
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return err
		},
	}
}
