package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	reportadapter "github.com/bnema/followcheck/internal/adapters/render/report"
	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/spf13/cobra"
)

type reportJSON struct {
	Account          string              `json:"account,omitempty"`
	Followers        int                 `json:"followers"`
	Following        int                 `json:"following"`
	Mutual           []domain.Identifier `json:"mutual"`
	NotFollowingBack []domain.Identifier `json:"not_following_back"`
	NotFollowedByYou []domain.Identifier `json:"not_followed_by_you"`
	Lists            []listJSON          `json:"lists,omitempty"`
	BestEffort       bool                `json:"best_effort"`
}

type listJSON struct {
	Kind       domain.ListKind         `json:"kind"`
	Expected   int                     `json:"expected"`
	Collected  int                     `json:"collected"`
	Iterations int                     `json:"iterations"`
	Tiers      []domain.CollectionTier `json:"tiers"`
	StopReason domain.StopReason       `json:"stop_reason,omitempty"`
	BestEffort bool                    `json:"best_effort"`
}

func newReportJSON(report application.Report) reportJSON {
	out := reportJSON{
		Account:          string(report.Account),
		Followers:        report.Followers,
		Following:        report.Following,
		Mutual:           nonNil(report.Result.Mutual),
		NotFollowingBack: nonNil(report.Result.FollowedNotFollowingBack),
		NotFollowedByYou: nonNil(report.Result.FollowerNotFollowedBack),
		BestEffort:       report.BestEffort(),
	}
	for _, stats := range report.Stats {
		out.Lists = append(out.Lists, listJSON{
			Kind:       stats.Kind,
			Expected:   stats.Expected,
			Collected:  stats.Collected,
			Iterations: stats.Iterations,
			Tiers:      stats.Tiers,
			StopReason: stats.StopReason,
			BestEffort: stats.BestEffort,
		})
	}
	return out
}

func nonNil(ids []domain.Identifier) []domain.Identifier {
	if ids == nil {
		return []domain.Identifier{}
	}
	return ids
}

func writeReportOutput(cmd *cobra.Command, app *app, report application.Report, preview int, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(newReportJSON(report))
	}

	rendered, err := app.renderer(report, reportadapter.RenderOptions{Preview: preview})
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// writeReportFiles stores one text file per category in dir.
func writeReportFiles(dir string, report application.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, file := range report.Files() {
		path := filepath.Join(dir, file.Name)
		if err := os.WriteFile(path, file.Body(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
