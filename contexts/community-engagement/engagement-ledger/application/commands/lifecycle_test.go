package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []ports.Notification
	fail  bool
	calls int
}

func (n *recordingNotifier) Notify(_ context.Context, notification ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, notification)
	return nil
}

func TestOnIssueCreatedIsIdempotent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)

	for i := 0; i < 2; i++ {
		if err := uc.OnIssueCreated(context.Background(), IssueCreatedCommand{
			IssueID:    "issue-1",
			ReporterID: "reporter-1",
		}); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}

	account := karmaOf(t, store, "reporter-1")
	if account.Karma != 10 || account.IssuesReported != 1 {
		t.Fatalf("replay applied karma twice: %+v", account)
	}
}

func TestOnIssueCreatedGrantsFirstReportBadge(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	badges, err := store.ListBadges(context.Background(), "reporter-1")
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeKey != "first_report" {
		t.Fatalf("expected first_report badge, got %+v", badges)
	}
}

func TestOnIssueCreatedCountsCategoryReports(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)

	for i, issueID := range []string{"issue-1", "issue-2", "issue-3"} {
		if err := uc.OnIssueCreated(context.Background(), IssueCreatedCommand{
			IssueID:    issueID,
			ReporterID: "reporter-1",
			Category:   "streetlight",
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	account := karmaOf(t, store, "reporter-1")
	if account.ReportsInCategory("streetlight") != 3 {
		t.Fatalf("streetlight reports = %d, want 3", account.ReportsInCategory("streetlight"))
	}

	badges, err := store.ListBadges(context.Background(), "reporter-1")
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	keys := map[string]bool{}
	for _, badge := range badges {
		keys[badge.BadgeKey] = true
	}
	if !keys["streetlight_saver"] {
		t.Fatalf("expected streetlight_saver after three streetlight reports, got %+v", badges)
	}
	if keys["pothole_patriot"] {
		t.Fatalf("pothole_patriot granted without road maintenance reports: %+v", badges)
	}
}

func TestOnStatusChangedForwardOnly(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	forward := []entities.IssueStatus{
		entities.StatusAcknowledged,
		entities.StatusInProgress,
		entities.StatusResolved,
		entities.StatusClosed,
	}
	for _, status := range forward {
		if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
			IssueID: "issue-1",
			To:      status,
		}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	// Closed is terminal.
	err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1",
		To:      entities.StatusInProgress,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of closed, got %v", err)
	}

	engagement, _ := store.GetEngagement(context.Background(), "issue-1")
	if engagement.Status != entities.StatusClosed {
		t.Fatalf("status = %s, want closed", engagement.Status)
	}
}

func TestOnStatusChangedBackwardRejected(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusInProgress,
	}); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusAcknowledged,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition going backward, got %v", err)
	}

	// Rejection is only reachable early in the lifecycle.
	err = uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusRejected,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition rejecting in_progress issue, got %v", err)
	}
}

func TestOnStatusChangedSameStatusIsNoOp(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusSubmitted,
	}); err != nil {
		t.Fatalf("replaying current status should be a no-op, got %v", err)
	}
	engagement, _ := store.GetEngagement(context.Background(), "issue-1")
	if engagement.Status != entities.StatusSubmitted {
		t.Fatalf("status changed unexpectedly: %+v", engagement)
	}
}

func TestOnStatusChangedStaleFromView(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1",
		From:    entities.StatusAcknowledged,
		To:      entities.StatusInProgress,
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale from view, got %v", err)
	}
}

func TestResolveBonusAppliedOnce(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusResolved,
	}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	account := karmaOf(t, store, "reporter-1")
	if account.Karma != 60 || account.IssuesResolved != 1 {
		t.Fatalf("after resolve: %+v, want karma 60 and issues_resolved 1", account)
	}

	// Replay and further transitions must not double-pay.
	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusResolved,
	}); err != nil {
		t.Fatalf("resolve replay failed: %v", err)
	}
	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusClosed,
	}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := karmaOf(t, store, "reporter-1").Karma; got != 60 {
		t.Fatalf("karma after replay/close = %d, want 60", got)
	}
}

func TestOnStatusChangedNotifiesReporter(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)
	notifier := &recordingNotifier{}
	uc.Notifier = notifier
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusAcknowledged,
	}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != "reporter-1" {
		t.Fatalf("expected one notification for reporter, got %+v", notifier.sent)
	}
}

func TestOnStatusChangedNotifierFailureIsSwallowed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	uc.Notifier = &recordingNotifier{fail: true}
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusAcknowledged,
	}); err != nil {
		t.Fatalf("transition must survive notifier failure, got %v", err)
	}
	engagement, _ := store.GetEngagement(context.Background(), "issue-1")
	if engagement.Status != entities.StatusAcknowledged {
		t.Fatalf("status = %s, want acknowledged", engagement.Status)
	}
}
