package domain

type ListKind string

const (
	ListFollowers ListKind = "followers"
	ListFollowing ListKind = "following"
)

type StopReason string

const (
	StopExpectedReached StopReason = "expected_reached"
	StopStable          StopReason = "stable"
	StopIterationBound  StopReason = "iteration_bound"
	StopBudget          StopReason = "budget"
)

type CollectionTier string

const (
	TierDialog   CollectionTier = "dialog"
	TierFullPage CollectionTier = "full_page"
	TierMobile   CollectionTier = "mobile"
)

type ListStats struct {
	Kind       ListKind
	Expected   int
	Collected  int
	Iterations int
	Tiers      []CollectionTier
	StopReason StopReason
	BestEffort bool
}

type CollectionResult struct {
	Account        Identifier
	Followers      IdentifierSet
	Following      IdentifierSet
	FollowersStats ListStats
	FollowingStats ListStats
}

// BestEffort reports whether either list is known to be incomplete.
func (r CollectionResult) BestEffort() bool {
	return r.FollowersStats.BestEffort || r.FollowingStats.BestEffort
}
