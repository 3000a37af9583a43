package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civicpulse/contexts/civic-reporting/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-reporting/issue-service/domain/errors"
	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

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

// AutoMigrate creates the issues table. Intended for local and test setups.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&issueModel{})
}

func (r *Repository) SaveIssue(ctx context.Context, issue entities.Issue) error {
	row := issueModelFromEntity(issue)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":       row.Title,
			"description": row.Description,
			"category":    row.Category,
			"department":  row.Department,
			"priority":    row.Priority,
			"latitude":    row.Latitude,
			"longitude":   row.Longitude,
			"address":     row.Address,
			"photo_url":   row.PhotoURL,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("issue_repo_save_failed", create.Error, "issue_id", issue.IssueID)
	}
	return nil
}

func (r *Repository) GetIssue(ctx context.Context, issueID string) (entities.Issue, error) {
	var row issueModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(issueID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Issue{}, domainerrors.ErrIssueNotFound
		}
		return entities.Issue{}, r.logError("issue_repo_get_failed", err, "issue_id", strings.TrimSpace(issueID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]entities.Issue, error) {
	tx := r.db.WithContext(ctx).Model(&issueModel{})
	if filter.Category != "" {
		tx = tx.Where("category = ?", string(filter.Category))
	}
	if filter.ReporterID != "" {
		tx = tx.Where("reporter_id = ?", filter.ReporterID)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []issueModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("issue_repo_list_failed", err)
	}
	out := make([]entities.Issue, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "civic-reporting/issue-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("issue repository operation failed", fields...)
	return err
}

type issueModel struct {
	IssueID     string    `gorm:"column:id;primaryKey"`
	ReporterID  string    `gorm:"column:reporter_id;index"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Category    string    `gorm:"column:category;index"`
	Department  string    `gorm:"column:department"`
	Priority    string    `gorm:"column:priority"`
	Latitude    float64   `gorm:"column:latitude"`
	Longitude   float64   `gorm:"column:longitude"`
	Address     string    `gorm:"column:address"`
	PhotoURL    string    `gorm:"column:photo_url"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (issueModel) TableName() string {
	return "issues"
}

func issueModelFromEntity(issue entities.Issue) issueModel {
	return issueModel{
		IssueID:     issue.IssueID,
		ReporterID:  issue.ReporterID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Department:  issue.Department,
		Priority:    string(issue.Priority),
		Latitude:    issue.Latitude,
		Longitude:   issue.Longitude,
		Address:     issue.Address,
		PhotoURL:    issue.PhotoURL,
		CreatedAt:   issue.CreatedAt.UTC(),
		UpdatedAt:   issue.UpdatedAt.UTC(),
	}
}

func (m issueModel) toEntity() entities.Issue {
	return entities.Issue{
		IssueID:     m.IssueID,
		ReporterID:  m.ReporterID,
		Title:       m.Title,
		Description: m.Description,
		Category:    entities.Category(m.Category),
		Department:  m.Department,
		Priority:    entities.Priority(m.Priority),
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Address:     m.Address,
		PhotoURL:    m.PhotoURL,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

var _ ports.IssueRepository = (*Repository)(nil)
