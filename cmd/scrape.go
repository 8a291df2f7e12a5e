package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/spf13/cobra"
)

var errNoCookieSource = errors.New("provide --cookies <file> or --conversation <id>")

func newScrapeCmd(app *app) *cobra.Command {
	var cookiesPath string
	var conversation int64
	var preview int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scrape <account>",
		Short: "Collect an account's followers and following with a browser session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := domain.NormalizeIdentifier(args[0])
			if account == "" {
				return fmt.Errorf("%w: %q is not a username", domain.ErrInputValidation, args[0])
			}

			jar, err := app.loadCookies(cmd.Context(), cookiesPath, domain.ConversationID(conversation))
			if err != nil {
				return err
			}

			collector := app.buildServices().collector
			var result domain.CollectionResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Collecting @%s...", account), func(ctx context.Context) error {
				var err error
				result, err = collector.Collect(ctx, account, jar)
				return err
			})
			if err != nil {
				return fmt.Errorf("collect @%s: %w", account, err)
			}

			return writeReportOutput(cmd, app, application.NewCollectionReport(result), preview, asJSON)
		},
	}

	cmd.Flags().StringVar(&cookiesPath, "cookies", "", "Cookie file (Netscape format or name=value lines)")
	cmd.Flags().Int64Var(&conversation, "conversation", 0, "Use the cookies stored for this bot conversation")
	cmd.Flags().IntVar(&preview, "preview", 0, "Usernames listed per category (negative lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func (a *app) loadCookies(ctx context.Context, path string, conversation domain.ConversationID) (*domain.CookieJar, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cookie file: %w", err)
		}
		jar, err := a.codec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return jar, nil
	case conversation != 0:
		jar, err := a.jars.Get(ctx, conversation)
		if err != nil {
			return nil, fmt.Errorf("load stored cookies: %w", err)
		}
		return jar, nil
	default:
		return nil, errNoCookieSource
	}
}
