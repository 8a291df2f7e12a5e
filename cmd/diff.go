package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/spf13/cobra"
)

func newDiffCmd(app *app) *cobra.Command {
	var followersPath string
	var followingPath string
	var outDir string
	var preview int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare exported followers and following lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			followers, err := readIdentifierList(followersPath)
			if err != nil {
				return err
			}
			following, err := readIdentifierList(followingPath)
			if err != nil {
				return err
			}

			report := application.NewReport(followers, following)
			if outDir != "" {
				if err := writeReportFiles(outDir, report); err != nil {
					return err
				}
			}
			return writeReportOutput(cmd, app, report, preview, asJSON)
		},
	}

	cmd.Flags().StringVar(&followersPath, "followers", "", "File with one follower username per line")
	cmd.Flags().StringVar(&followingPath, "following", "", "File with one followed username per line")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the per-category report files to")
	cmd.Flags().IntVar(&preview, "preview", 0, "Usernames listed per category (negative lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("followers")
	_ = cmd.MarkFlagRequired("following")

	return cmd
}

func readIdentifierList(path string) (domain.IdentifierSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read username list: %w", err)
	}

	ids := domain.ParseIdentifierList(string(data))
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s has no usernames", domain.ErrInputValidation, path)
	}
	return ids, nil
}
