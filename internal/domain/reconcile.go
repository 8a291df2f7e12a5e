package domain

type ReconciliationResult struct {
	Mutual                   []Identifier
	FollowedNotFollowingBack []Identifier
	FollowerNotFollowedBack  []Identifier
}

// Reconcile partitions followers and following into the three categories, each sorted ascending.
func Reconcile(followers, following IdentifierSet) ReconciliationResult {
	result := ReconciliationResult{
		Mutual:                   []Identifier{},
		FollowedNotFollowingBack: []Identifier{},
		FollowerNotFollowedBack:  []Identifier{},
	}

	for id := range followers {
		if following.Has(id) {
			result.Mutual = append(result.Mutual, id)
			continue
		}
		result.FollowerNotFollowedBack = append(result.FollowerNotFollowedBack, id)
	}

	for id := range following {
		if !followers.Has(id) {
			result.FollowedNotFollowingBack = append(result.FollowedNotFollowingBack, id)
		}
	}

	sortIdentifiers(result.Mutual)
	sortIdentifiers(result.FollowedNotFollowingBack)
	sortIdentifiers(result.FollowerNotFollowedBack)

	return result
}

type Category string

const (
	CategoryMutual                   Category = "mutual"
	CategoryFollowedNotFollowingBack Category = "not_following_back"
	CategoryFollowerNotFollowedBack  Category = "not_followed_by_you"
	CategoryUnknown                  Category = "unknown"
)

// Classify reports which reconciliation category id falls into.
func Classify(id Identifier, followers, following IdentifierSet) Category {
	inFollowers := followers.Has(id)
	inFollowing := following.Has(id)

	switch {
	case inFollowers && inFollowing:
		return CategoryMutual
	case inFollowing:
		return CategoryFollowedNotFollowingBack
	case inFollowers:
		return CategoryFollowerNotFollowedBack
	default:
		return CategoryUnknown
	}
}
