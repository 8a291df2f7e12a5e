package application

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/bnema/followcheck/internal/domain"
)

const (
	maxSuggestions     = 3
	suggestionMinScore = 0.85
	maxFindResults     = 10
)

type WhyAnswer struct {
	Identifier  domain.Identifier
	Category    domain.Category
	Suggestions []domain.Identifier
}

func (a WhyAnswer) String() string {
	switch a.Category {
	case domain.CategoryMutual:
		return fmt.Sprintf("@%s follows you and you follow them.", a.Identifier)
	case domain.CategoryFollowedNotFollowingBack:
		return fmt.Sprintf("You follow @%s, but they don't follow you back.", a.Identifier)
	case domain.CategoryFollowerNotFollowedBack:
		return fmt.Sprintf("@%s follows you, but you don't follow them.", a.Identifier)
	}

	msg := fmt.Sprintf("@%s is in neither list.", a.Identifier)
	if len(a.Suggestions) > 0 {
		names := make([]string, 0, len(a.Suggestions))
		for _, id := range a.Suggestions {
			names = append(names, "@"+string(id))
		}
		msg += " Did you mean " + strings.Join(names, ", ") + "?"
	}
	return msg
}

// Explain classifies raw against the lists and suggests close names when it is in neither.
func Explain(raw string, followers, following domain.IdentifierSet) (WhyAnswer, error) {
	id := domain.NormalizeIdentifier(raw)
	if id == "" {
		return WhyAnswer{}, fmt.Errorf("explain %q: %w", raw, domain.ErrInputValidation)
	}

	answer := WhyAnswer{Identifier: id, Category: domain.Classify(id, followers, following)}
	if answer.Category == domain.CategoryUnknown {
		answer.Suggestions = suggest(id, followers, following)
	}
	return answer, nil
}

func suggest(id domain.Identifier, sets ...domain.IdentifierSet) []domain.Identifier {
	type scored struct {
		id    domain.Identifier
		score float64
	}

	seen := domain.IdentifierSet{}
	var candidates []scored
	for _, set := range sets {
		for candidate := range set {
			if !seen.Add(candidate) {
				continue
			}
			score := matchr.JaroWinkler(string(id), string(candidate), false)
			if score >= suggestionMinScore {
				candidates = append(candidates, scored{id: candidate, score: score})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	out := make([]domain.Identifier, 0, maxSuggestions)
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].id)
	}
	return out
}

type FindResult struct {
	Pattern   string
	Followers []domain.Identifier
	Following []domain.Identifier
}

func (r FindResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matches for %q", r.Pattern)
	writeMatches(&b, "Followers", r.Followers)
	writeMatches(&b, "Following", r.Following)
	return b.String()
}

func writeMatches(b *strings.Builder, title string, ids []domain.Identifier) {
	fmt.Fprintf(b, "\n\n%s:", title)
	if len(ids) == 0 {
		b.WriteString(" none")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(b, "\n• %s", id)
	}
}

// Find returns up to ten members of each list containing pattern.
func Find(pattern string, followers, following domain.IdentifierSet) (FindResult, error) {
	needle := string(domain.NormalizeIdentifier(pattern))
	if needle == "" {
		return FindResult{}, fmt.Errorf("find %q: %w", pattern, domain.ErrInputValidation)
	}

	return FindResult{
		Pattern:   needle,
		Followers: matching(followers, needle),
		Following: matching(following, needle),
	}, nil
}

func matching(set domain.IdentifierSet, needle string) []domain.Identifier {
	out := []domain.Identifier{}
	for _, id := range set.Sorted() {
		if strings.Contains(string(id), needle) {
			out = append(out, id)
			if len(out) == maxFindResults {
				break
			}
		}
	}
	return out
}
