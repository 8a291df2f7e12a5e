package cmd

import (
	"github.com/bnema/followcheck/internal/logging"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "followcheck",
		Short:         "followcheck: find out who follows you back",
		Long:          "followcheck compares an account's followers with the accounts it follows. It runs as a Telegram bot, diffs exported username lists, and collects both lists from a logged-in browser session.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		app.logger = logger
		return nil
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newDiffCmd(app),
		newScrapeCmd(app),
		newCookiesCmd(app),
		newTokenCmd(app),
	)

	return rootCmd
}
