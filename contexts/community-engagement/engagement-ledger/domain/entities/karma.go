package entities

import "time"

// Karma point values for ledger events.
const (
	KarmaIssueReported = 10
	KarmaVoteCast      = 1
	KarmaUpvoteReceive = 2
	KarmaIssueResolved = 50
	KarmaCommentPosted = 1
)

// ActivityCounter names the per-user counters bumped alongside karma deltas.
// Badge thresholds read these counters.
type ActivityCounter string

const (
	CounterNone           ActivityCounter = ""
	CounterIssuesReported ActivityCounter = "issues_reported"
	CounterUpvotesCast    ActivityCounter = "upvotes_cast"
	CounterConfirmsCast   ActivityCounter = "confirms_cast"
	CounterCommentsPosted ActivityCounter = "comments_posted"
	CounterIssuesResolved ActivityCounter = "issues_resolved"
)

// KarmaAccount accumulates a user's civic karma. Karma never drops below
// zero; retractions remove exactly what the matching cast added.
// CategoryReports tracks reported issues per category key for the
// category-specific badge rules.
type KarmaAccount struct {
	UserID          string
	Karma           int
	IssuesReported  int
	UpvotesCast     int
	ConfirmsCast    int
	CommentsPosted  int
	IssuesResolved  int
	CategoryReports map[string]int
	UpdatedAt       time.Time
}

// ReportsInCategory returns the number of issues the user reported in the
// given category.
func (a KarmaAccount) ReportsInCategory(category string) int {
	return a.CategoryReports[category]
}

// CounterValue returns the named activity counter.
func (a KarmaAccount) CounterValue(counter ActivityCounter) int {
	switch counter {
	case CounterIssuesReported:
		return a.IssuesReported
	case CounterUpvotesCast:
		return a.UpvotesCast
	case CounterConfirmsCast:
		return a.ConfirmsCast
	case CounterCommentsPosted:
		return a.CommentsPosted
	case CounterIssuesResolved:
		return a.IssuesResolved
	default:
		return 0
	}
}

// KarmaLogEntry is one append-only row per applied delta.
type KarmaLogEntry struct {
	LogID     string
	UserID    string
	Delta     int
	Reason    string
	EventKey  string
	CreatedAt time.Time
}

// Badge is a one-time grant; identity is (UserID, BadgeKey).
type Badge struct {
	BadgeID     string
	UserID      string
	BadgeKey    string
	Name        string
	Description string
	EarnedAt    time.Time
}

// BadgeRule awards a badge once the tracked value reaches Threshold.
// KarmaBased rules compare against total karma; ReportCategory rules compare
// against the per-category report count; the rest read an activity counter.
type BadgeRule struct {
	Key            string
	Name           string
	Description    string
	Counter        ActivityCounter
	ReportCategory string
	KarmaBased     bool
	Threshold      int
}

// BadgeRules is the closed badge catalogue.
var BadgeRules = []BadgeRule{
	{Key: "first_report", Name: "First Steps", Description: "Reported your first issue", Counter: CounterIssuesReported, Threshold: 1},
	{Key: "community_champion", Name: "Community Champion", Description: "Earned 500+ civic karma", KarmaBased: true, Threshold: 500},
	{Key: "voting_veteran", Name: "Voting Veteran", Description: "Voted on 50 issues", Counter: CounterUpvotesCast, Threshold: 50},
	{Key: "confirmation_king", Name: "Confirmation King", Description: "Confirmed 25 issues", Counter: CounterConfirmsCast, Threshold: 25},
	{Key: "social_butterfly", Name: "Social Butterfly", Description: "Commented on 20 issues", Counter: CounterCommentsPosted, Threshold: 20},
	{Key: "issue_resolver", Name: "Issue Resolver", Description: "Had 10 issues resolved", Counter: CounterIssuesResolved, Threshold: 10},
	{Key: "pothole_patriot", Name: "Pothole Patriot", Description: "Reported 5 road maintenance issues", ReportCategory: "road_maintenance", Threshold: 5},
	{Key: "streetlight_saver", Name: "Streetlight Saver", Description: "Reported 3 streetlight issues", ReportCategory: "streetlight", Threshold: 3},
	{Key: "clean_up_crew", Name: "Clean-Up Crew", Description: "Reported 5 sanitation issues", ReportCategory: "sanitation", Threshold: 5},
	{Key: "water_warrior", Name: "Water Warrior", Description: "Reported 3 water supply issues", ReportCategory: "water_supply", Threshold: 3},
	{Key: "power_protector", Name: "Power Protector", Description: "Reported 3 electricity issues", ReportCategory: "electricity", Threshold: 3},
	{Key: "traffic_tracker", Name: "Traffic Tracker", Description: "Reported 3 traffic issues", ReportCategory: "traffic", Threshold: 3},
	{Key: "park_patrol", Name: "Park Patrol", Description: "Reported 3 park issues", ReportCategory: "parks", Threshold: 3},
}

// Qualifies reports whether the account has reached the rule's threshold.
func (r BadgeRule) Qualifies(account KarmaAccount) bool {
	switch {
	case r.KarmaBased:
		return account.Karma >= r.Threshold
	case r.ReportCategory != "":
		return account.ReportsInCategory(r.ReportCategory) >= r.Threshold
	default:
		return account.CounterValue(r.Counter) >= r.Threshold
	}
}
