package application

import (
	"fmt"
	"strings"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/dustin/go-humanize"
)

const reportPreview = 15

// ReportFile is one category of a reconciliation, delivered as a text file.
type ReportFile struct {
	Name     string
	Title    string
	Category domain.Category
	Members  []domain.Identifier
}

func (f ReportFile) Body() []byte {
	var b strings.Builder
	for _, id := range f.Members {
		b.WriteString(string(id))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Report is a reconciliation ready for delivery.
type Report struct {
	Account   domain.Identifier
	Followers int
	Following int
	Result    domain.ReconciliationResult
	Stats     []domain.ListStats
}

func NewReport(followers, following domain.IdentifierSet) Report {
	return Report{
		Followers: len(followers),
		Following: len(following),
		Result:    domain.Reconcile(followers, following),
	}
}

// NewCollectionReport reconciles a collection and keeps its per-list stats.
func NewCollectionReport(result domain.CollectionResult) Report {
	report := NewReport(result.Followers, result.Following)
	report.Account = result.Account
	report.Stats = []domain.ListStats{result.FollowersStats, result.FollowingStats}
	return report
}

func (r Report) BestEffort() bool {
	for _, stats := range r.Stats {
		if stats.BestEffort {
			return true
		}
	}
	return false
}

func (r Report) Files() []ReportFile {
	return []ReportFile{
		{Name: "mutuals.txt", Title: "Mutual", Category: domain.CategoryMutual, Members: r.Result.Mutual},
		{Name: "not_following_back.txt", Title: "You follow, they don't follow back", Category: domain.CategoryFollowedNotFollowingBack, Members: r.Result.FollowedNotFollowingBack},
		{Name: "not_followed_by_you.txt", Title: "They follow you, you don't follow back", Category: domain.CategoryFollowerNotFollowedBack, Members: r.Result.FollowerNotFollowedBack},
	}
}

func (r Report) Summary() string {
	var b strings.Builder

	if r.Account != "" {
		fmt.Fprintf(&b, "Results for @%s\n", r.Account)
	}
	fmt.Fprintf(&b, "Followers: %s\nFollowing: %s\n", humanize.Comma(int64(r.Followers)), humanize.Comma(int64(r.Following)))

	for _, file := range r.Files() {
		fmt.Fprintf(&b, "\n%s: %s\n", file.Title, humanize.Comma(int64(len(file.Members))))
		for i, id := range file.Members {
			if i == reportPreview {
				fmt.Fprintf(&b, "...and %s more\n", humanize.Comma(int64(len(file.Members)-reportPreview)))
				break
			}
			fmt.Fprintf(&b, "• %s\n", id)
		}
	}

	if r.BestEffort() {
		b.WriteString("\nNote: collection stopped before every account loaded")
		for _, stats := range r.Stats {
			if stats.Expected > 0 {
				fmt.Fprintf(&b, "; %s %s of %s", stats.Kind, humanize.Comma(int64(stats.Collected)), humanize.Comma(int64(stats.Expected)))
			}
		}
		b.WriteString(". Results may be incomplete.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
