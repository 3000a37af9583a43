package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository persists the engagement ledger in Postgres. Each Commit* call
// runs inside one transaction so vote rows, counts, karma, and the outbox
// record land together or not at all.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the ledger tables. Intended for local and test setups.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&engagementModel{},
		&voteModel{},
		&commentModel{},
		&karmaAccountModel{},
		&categoryReportModel{},
		&karmaLogModel{},
		&badgeModel{},
		&outboxModel{},
	)
}

func (r *Repository) GetEngagement(ctx context.Context, issueID string) (entities.IssueEngagement, error) {
	var row engagementModel
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", strings.TrimSpace(issueID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.IssueEngagement{}, domainerrors.ErrIssueNotFound
		}
		return entities.IssueEngagement{}, r.logError("ledger_repo_get_engagement_failed", err, "issue_id", strings.TrimSpace(issueID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListEngagements(ctx context.Context) ([]entities.IssueEngagement, error) {
	var rows []engagementModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_engagements_failed", err)
	}
	out := make([]entities.IssueEngagement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) GetVote(
	ctx context.Context,
	issueID string,
	userID string,
	voteType entities.VoteType,
) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", strings.TrimSpace(issueID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("vote_type = ?", string(voteType)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("ledger_repo_get_vote_failed", err,
			"issue_id", strings.TrimSpace(issueID),
			"user_id", strings.TrimSpace(userID),
			"vote_type", string(voteType),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesSince(ctx context.Context, voteType entities.VoteType, since time.Time) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("vote_type = ?", string(voteType)).
		Where("cast_at >= ?", since.UTC()).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_votes_since_failed", err, "vote_type", string(voteType))
	}
	out := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) ListComments(ctx context.Context, issueID string, newestFirst bool) ([]entities.Comment, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("issue_id = ?", strings.TrimSpace(issueID)).
		Order(order).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_comments_failed", err, "issue_id", strings.TrimSpace(issueID))
	}
	out := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) CreateEngagement(ctx context.Context, creation ports.EngagementCreation) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := engagementModelFromEntity(creation.Engagement)
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "issue_id"}},
			DoNothing: true,
		}).Create(&row)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return nil
		}
		created = true
		if err := applyKarmaTx(tx, creation.Karma, row.CreatedAt); err != nil {
			return err
		}
		return appendOutboxTx(tx, creation.Event)
	})
	if err != nil {
		return false, r.logError("ledger_repo_create_engagement_failed", err,
			"issue_id", creation.Engagement.IssueID,
		)
	}
	return created, nil
}

func (r *Repository) CommitVoteToggle(ctx context.Context, mutation ports.VoteMutation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mutation.Applied {
			row := voteModelFromEntity(mutation.Vote)
			insert := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "issue_id"}, {Name: "user_id"}, {Name: "vote_type"}},
				DoNothing: true,
			}).Create(&row)
			if insert.Error != nil {
				return insert.Error
			}
			if insert.RowsAffected == 0 {
				return domainerrors.ErrConflict
			}
		} else {
			del := tx.
				Where("issue_id = ?", mutation.Vote.IssueID).
				Where("user_id = ?", mutation.Vote.UserID).
				Where("vote_type = ?", string(mutation.Vote.VoteType)).
				Delete(&voteModel{})
			if del.Error != nil {
				return del.Error
			}
			if del.RowsAffected == 0 {
				return domainerrors.ErrConflict
			}
		}
		if err := saveEngagementTx(tx, mutation.Engagement); err != nil {
			return err
		}
		if err := applyKarmaTx(tx, mutation.Karma, mutation.Engagement.UpdatedAt.UTC()); err != nil {
			return err
		}
		return appendOutboxTx(tx, mutation.Event)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ledger_repo_commit_vote_failed", err,
			"issue_id", mutation.Vote.IssueID,
			"user_id", mutation.Vote.UserID,
			"vote_type", string(mutation.Vote.VoteType),
		)
	}
	return nil
}

func (r *Repository) CommitComment(ctx context.Context, mutation ports.CommentMutation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := commentModel{
			CommentID: mutation.Comment.CommentID,
			IssueID:   mutation.Comment.IssueID,
			UserID:    mutation.Comment.UserID,
			Body:      mutation.Comment.Text,
			CreatedAt: mutation.Comment.CreatedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := applyKarmaTx(tx, mutation.Karma, row.CreatedAt); err != nil {
			return err
		}
		return appendOutboxTx(tx, mutation.Event)
	})
	if err != nil {
		return r.logError("ledger_repo_commit_comment_failed", err,
			"issue_id", mutation.Comment.IssueID,
			"comment_id", mutation.Comment.CommentID,
		)
	}
	return nil
}

func (r *Repository) CommitStatusChange(ctx context.Context, mutation ports.StatusMutation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&engagementModel{}).
			Where("issue_id = ?", mutation.Engagement.IssueID).
			Updates(map[string]any{
				"status":                 string(mutation.Engagement.Status),
				"resolved_karma_applied": mutation.Engagement.ResolvedKarmaApplied,
				"updated_at":             mutation.Engagement.UpdatedAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrIssueNotFound
		}
		if err := applyKarmaTx(tx, mutation.Karma, mutation.Engagement.UpdatedAt.UTC()); err != nil {
			return err
		}
		return appendOutboxTx(tx, mutation.Event)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrIssueNotFound) {
			return domainerrors.ErrIssueNotFound
		}
		return r.logError("ledger_repo_commit_status_failed", err,
			"issue_id", mutation.Engagement.IssueID,
			"status", string(mutation.Engagement.Status),
		)
	}
	return nil
}

func (r *Repository) GetKarmaAccount(ctx context.Context, userID string) (entities.KarmaAccount, bool, error) {
	var row karmaAccountModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.KarmaAccount{}, false, nil
		}
		return entities.KarmaAccount{}, false, r.logError("ledger_repo_get_karma_failed", err, "user_id", strings.TrimSpace(userID))
	}

	var categoryRows []categoryReportModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", row.UserID).
		Find(&categoryRows).Error; err != nil {
		return entities.KarmaAccount{}, false, r.logError("ledger_repo_get_category_reports_failed", err, "user_id", row.UserID)
	}

	account := row.toEntity()
	if len(categoryRows) > 0 {
		account.CategoryReports = make(map[string]int, len(categoryRows))
		for _, categoryRow := range categoryRows {
			account.CategoryReports[categoryRow.Category] = categoryRow.Reports
		}
	}
	return account, true, nil
}

func (r *Repository) ListLeaderboard(ctx context.Context, limit int) ([]entities.KarmaAccount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []karmaAccountModel
	if err := r.db.WithContext(ctx).
		Order("karma DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_leaderboard_failed", err, "limit", limit)
	}
	out := make([]entities.KarmaAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) ListBadges(ctx context.Context, userID string) ([]entities.Badge, error) {
	var rows []badgeModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("earned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_badges_failed", err, "user_id", strings.TrimSpace(userID))
	}
	out := make([]entities.Badge, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) GrantBadge(ctx context.Context, badge entities.Badge) (bool, error) {
	row := badgeModel{
		BadgeID:     badge.BadgeID,
		UserID:      badge.UserID,
		BadgeKey:    badge.BadgeKey,
		Name:        badge.Name,
		Description: badge.Description,
		EarnedAt:    badge.EarnedAt.UTC(),
	}
	insert := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_key"}},
		DoNothing: true,
	}).Create(&row)
	if insert.Error != nil {
		if isUniqueViolation(insert.Error) {
			return false, nil
		}
		return false, r.logError("ledger_repo_grant_badge_failed", insert.Error,
			"user_id", badge.UserID,
			"badge_key", badge.BadgeKey,
		)
	}
	return insert.RowsAffected > 0, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// saveEngagementTx upserts the full engagement row inside a commit.
func saveEngagementTx(tx *gorm.DB, engagement entities.IssueEngagement) error {
	row := engagementModelFromEntity(engagement)
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "issue_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"upvotes":                row.Upvotes,
			"confirmations":          row.Confirmations,
			"urgency_score":          row.UrgencyScore,
			"status":                 row.Status,
			"resolved_karma_applied": row.ResolvedKarmaApplied,
			"updated_at":             row.UpdatedAt,
		}),
	}).Create(&row).Error
}

// applyKarmaTx folds each delta into the account row with a floor at zero and
// appends an audit log row. The upsert keeps concurrent commits additive.
func applyKarmaTx(tx *gorm.DB, deltas []ports.KarmaDelta, at time.Time) error {
	for _, delta := range deltas {
		seed := karmaAccountModel{
			UserID:    delta.UserID,
			Karma:     max(0, delta.Delta),
			UpdatedAt: at,
		}
		assignments := map[string]any{
			"karma":      gorm.Expr("GREATEST(karma_accounts.karma + ?, 0)", delta.Delta),
			"updated_at": at,
		}
		if column := counterColumn(delta.Counter); column != "" {
			seedCounter(&seed, delta.Counter, max(0, delta.CounterDelta))
			assignments[column] = gorm.Expr("GREATEST(karma_accounts."+column+" + ?, 0)", delta.CounterDelta)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&seed).Error; err != nil {
			return err
		}

		if delta.ReportCategory != "" {
			categoryRow := categoryReportModel{
				UserID:   delta.UserID,
				Category: delta.ReportCategory,
				Reports:  max(0, delta.CounterDelta),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
				DoUpdates: clause.Assignments(map[string]any{
					"reports": gorm.Expr("GREATEST(karma_category_reports.reports + ?, 0)", delta.CounterDelta),
				}),
			}).Create(&categoryRow).Error; err != nil {
				return err
			}
		}

		logRow := karmaLogModel{
			LogID:     uuid.NewString(),
			UserID:    delta.UserID,
			Delta:     delta.Delta,
			Reason:    delta.Reason,
			EventKey:  delta.EventKey,
			CreatedAt: at,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}
	}
	return nil
}

func counterColumn(counter entities.ActivityCounter) string {
	switch counter {
	case entities.CounterIssuesReported:
		return "issues_reported"
	case entities.CounterUpvotesCast:
		return "upvotes_cast"
	case entities.CounterConfirmsCast:
		return "confirms_cast"
	case entities.CounterCommentsPosted:
		return "comments_posted"
	case entities.CounterIssuesResolved:
		return "issues_resolved"
	default:
		return ""
	}
}

func seedCounter(seed *karmaAccountModel, counter entities.ActivityCounter, value int) {
	switch counter {
	case entities.CounterIssuesReported:
		seed.IssuesReported = value
	case entities.CounterUpvotesCast:
		seed.UpvotesCast = value
	case entities.CounterConfirmsCast:
		seed.ConfirmsCast = value
	case entities.CounterCommentsPosted:
		seed.CommentsPosted = value
	case entities.CounterIssuesResolved:
		seed.IssuesResolved = value
	}
}

func appendOutboxTx(tx *gorm.DB, event *ports.EventEnvelope) error {
	if event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(event.EventID),
		EventType:    strings.TrimSpace(event.EventType),
		PartitionKey: strings.TrimSpace(event.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-engagement/engagement-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.EngagementRepository = (*Repository)(nil)
	_ ports.KarmaRepository      = (*Repository)(nil)
	_ ports.OutboxRepository     = (*Repository)(nil)
)
