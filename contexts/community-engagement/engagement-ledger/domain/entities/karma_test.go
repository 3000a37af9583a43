package entities

import "testing"

func TestBadgeRuleQualifies(t *testing.T) {
	account := KarmaAccount{
		UserID:         "u1",
		Karma:          500,
		IssuesReported: 1,
		UpvotesCast:    49,
		CommentsPosted: 20,
		CategoryReports: map[string]int{
			"road_maintenance": 5,
			"streetlight":      2,
			"parks":            3,
		},
	}

	got := map[string]bool{}
	for _, rule := range BadgeRules {
		got[rule.Key] = rule.Qualifies(account)
	}

	want := map[string]bool{
		"first_report":       true,
		"community_champion": true,
		"voting_veteran":     false,
		"confirmation_king":  false,
		"social_butterfly":   true,
		"issue_resolver":     false,
		"pothole_patriot":    true,
		"streetlight_saver":  false,
		"clean_up_crew":      false,
		"water_warrior":      false,
		"power_protector":    false,
		"traffic_tracker":    false,
		"park_patrol":        true,
	}
	for key, expected := range want {
		if got[key] != expected {
			t.Errorf("rule %s qualifies = %v, want %v", key, got[key], expected)
		}
	}
}

func TestReportsInCategoryNilMap(t *testing.T) {
	var account KarmaAccount
	if got := account.ReportsInCategory("parks"); got != 0 {
		t.Errorf("ReportsInCategory on empty account = %d, want 0", got)
	}
}

func TestCounterValueUnknownCounter(t *testing.T) {
	account := KarmaAccount{IssuesReported: 3}
	if got := account.CounterValue(CounterNone); got != 0 {
		t.Errorf("CounterValue(none) = %d, want 0", got)
	}
	if got := account.CounterValue(CounterIssuesReported); got != 3 {
		t.Errorf("CounterValue(issues_reported) = %d, want 3", got)
	}
}
