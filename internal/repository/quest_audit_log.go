package repository

import (
	"context"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

type QuestAuditLogFilter struct {
	GuildID       string
	TargetID      string
	CorrelationID string
	Limit         int
}

type QuestAuditLogRepository interface {
	Create(ctx context.Context, data *entity.QuestAuditLog) error
	GetList(ctx context.Context, filter QuestAuditLogFilter) ([]entity.QuestAuditLog, error)
}

type questAuditLogRepository struct{}

func NewQuestAuditLogRepository() *questAuditLogRepository {
	return &questAuditLogRepository{}
}

func (r *questAuditLogRepository) Create(ctx context.Context, data *entity.QuestAuditLog) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *questAuditLogRepository) GetList(
	ctx context.Context, filter QuestAuditLogFilter,
) ([]entity.QuestAuditLog, error) {
	tx := xcontext.DB(ctx).Where("guild_id=?", filter.GuildID)

	if filter.TargetID != "" {
		tx = tx.Where("target_id=?", filter.TargetID)
	}

	if filter.CorrelationID != "" {
		tx = tx.Where("correlation_id=?", filter.CorrelationID)
	}

	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var result []entity.QuestAuditLog
	if err := tx.Order("id DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
