package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/bnema/followcheck/internal/adapters/cookiefile"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const maskedValueKeep = 4

func newCookiesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Inspect cookie files and stored session cookies",
	}

	cmd.AddCommand(
		newCookiesInspectCmd(app),
		newCookiesListCmd(app),
		newCookiesForgetCmd(app),
	)

	return cmd
}

func newCookiesInspectCmd(app *app) *cobra.Command {
	var netscape bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the cookies a file would provide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read cookie file: %w", err)
			}
			jar, err := app.codec.Decode(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			if netscape {
				_, err = cmd.OutOrStdout().Write(cookiefile.FormatNetscape(jar))
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCookieTable(jar, app))
			return err
		},
	}

	cmd.Flags().BoolVar(&netscape, "netscape", false, "Print the cookies in Netscape format")

	return cmd
}

func renderCookieTable(jar *domain.CookieJar, app *app) string {
	now := app.clock.Now()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DOMAIN", "PATH", "EXPIRES", "SECURE", "HTTPONLY", "VALUE")
	for _, c := range jar.Cookies() {
		expires := "session"
		if c.Expires != nil {
			expires = humanize.RelTime(*c.Expires, now, "ago", "from now")
		}
		t.Row(c.Name, c.Domain, c.Path, expires, strconv.FormatBool(c.Secure), strconv.FormatBool(c.HTTPOnly), maskValue(c.Value))
	}

	usable := "no"
	if jar.Usable(now) {
		usable = "yes"
	}
	return fmt.Sprintf("%s\ncookies: %d  usable session: %s", t.String(), jar.Len(), usable)
}

func maskValue(value string) string {
	runes := []rune(value)
	if len(runes) <= maskedValueKeep {
		return "****"
	}
	return string(runes[:maskedValueKeep]) + "****"
}

func newCookiesListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bot conversations with stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conversations, err := app.jars.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(conversations) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No stored cookies.")
				return err
			}

			for _, conversation := range conversations {
				jar, err := app.jars.Get(cmd.Context(), conversation)
				if err != nil && !errors.Is(err, domain.ErrCookieJarNotFound) {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d cookies\n", conversation, jar.Len()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCookiesForgetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <conversation>",
		Short: "Delete the cookies stored for a bot conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: conversation id %q", domain.ErrInputValidation, args[0])
			}
			if err := app.jars.Delete(cmd.Context(), domain.ConversationID(id)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Forgot cookies for conversation %d.\n", id)
			return err
		},
	}
}
