package postgresadapter

import (
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
)

type engagementModel struct {
	IssueID              string    `gorm:"column:issue_id;primaryKey"`
	ReporterID           string    `gorm:"column:reporter_id"`
	Upvotes              int       `gorm:"column:upvotes"`
	Confirmations        int       `gorm:"column:confirmations"`
	UrgencyScore         int       `gorm:"column:urgency_score"`
	Status               string    `gorm:"column:status"`
	ResolvedKarmaApplied bool      `gorm:"column:resolved_karma_applied"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (engagementModel) TableName() string {
	return "issue_engagement"
}

func engagementModelFromEntity(engagement entities.IssueEngagement) engagementModel {
	return engagementModel{
		IssueID:              engagement.IssueID,
		ReporterID:           engagement.ReporterID,
		Upvotes:              engagement.Upvotes,
		Confirmations:        engagement.Confirmations,
		UrgencyScore:         engagement.UrgencyScore,
		Status:               string(engagement.Status),
		ResolvedKarmaApplied: engagement.ResolvedKarmaApplied,
		CreatedAt:            engagement.CreatedAt.UTC(),
		UpdatedAt:            engagement.UpdatedAt.UTC(),
	}
}

func (m engagementModel) toEntity() entities.IssueEngagement {
	return entities.IssueEngagement{
		IssueID:              m.IssueID,
		ReporterID:           m.ReporterID,
		Upvotes:              m.Upvotes,
		Confirmations:        m.Confirmations,
		UrgencyScore:         m.UrgencyScore,
		Status:               entities.IssueStatus(m.Status),
		ResolvedKarmaApplied: m.ResolvedKarmaApplied,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

type voteModel struct {
	VoteID   string    `gorm:"column:id;primaryKey"`
	IssueID  string    `gorm:"column:issue_id;uniqueIndex:ux_issue_votes_identity"`
	UserID   string    `gorm:"column:user_id;uniqueIndex:ux_issue_votes_identity"`
	VoteType string    `gorm:"column:vote_type;uniqueIndex:ux_issue_votes_identity"`
	CastAt   time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "issue_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		VoteID:   vote.VoteID,
		IssueID:  vote.IssueID,
		UserID:   vote.UserID,
		VoteType: string(vote.VoteType),
		CastAt:   vote.CastAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:   m.VoteID,
		IssueID:  m.IssueID,
		UserID:   m.UserID,
		VoteType: entities.VoteType(m.VoteType),
		CastAt:   m.CastAt.UTC(),
	}
}

type commentModel struct {
	CommentID string    `gorm:"column:id;primaryKey"`
	IssueID   string    `gorm:"column:issue_id;index"`
	UserID    string    `gorm:"column:user_id"`
	Body      string    `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commentModel) TableName() string {
	return "issue_comments"
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID: m.CommentID,
		IssueID:   m.IssueID,
		UserID:    m.UserID,
		Text:      m.Body,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type karmaAccountModel struct {
	UserID         string    `gorm:"column:user_id;primaryKey"`
	Karma          int       `gorm:"column:karma"`
	IssuesReported int       `gorm:"column:issues_reported"`
	UpvotesCast    int       `gorm:"column:upvotes_cast"`
	ConfirmsCast   int       `gorm:"column:confirms_cast"`
	CommentsPosted int       `gorm:"column:comments_posted"`
	IssuesResolved int       `gorm:"column:issues_resolved"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (karmaAccountModel) TableName() string {
	return "karma_accounts"
}

func (m karmaAccountModel) toEntity() entities.KarmaAccount {
	return entities.KarmaAccount{
		UserID:         m.UserID,
		Karma:          m.Karma,
		IssuesReported: m.IssuesReported,
		UpvotesCast:    m.UpvotesCast,
		ConfirmsCast:   m.ConfirmsCast,
		CommentsPosted: m.CommentsPosted,
		IssuesResolved: m.IssuesResolved,
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type categoryReportModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	Category string `gorm:"column:category;primaryKey"`
	Reports  int    `gorm:"column:reports"`
}

func (categoryReportModel) TableName() string {
	return "karma_category_reports"
}

type karmaLogModel struct {
	LogID     string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	Delta     int       `gorm:"column:delta"`
	Reason    string    `gorm:"column:reason"`
	EventKey  string    `gorm:"column:event_key"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (karmaLogModel) TableName() string {
	return "karma_log"
}

type badgeModel struct {
	BadgeID     string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;uniqueIndex:ux_user_badges_identity"`
	BadgeKey    string    `gorm:"column:badge_key;uniqueIndex:ux_user_badges_identity"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	EarnedAt    time.Time `gorm:"column:earned_at"`
}

func (badgeModel) TableName() string {
	return "user_badges"
}

func (m badgeModel) toEntity() entities.Badge {
	return entities.Badge{
		BadgeID:     m.BadgeID,
		UserID:      m.UserID,
		BadgeKey:    m.BadgeKey,
		Name:        m.Name,
		Description: m.Description,
		EarnedAt:    m.EarnedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "engagement_outbox"
}
