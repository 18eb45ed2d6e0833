package repository

import (
	"context"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardGrantRepository interface {
	// CreateIfAbsent records a pending grant. An existing grant with the same
	// correlation id and index is kept as is.
	CreateIfAbsent(ctx context.Context, data *entity.RewardGrant) error
	GetByCorrelationID(ctx context.Context, correlationID string) ([]entity.RewardGrant, error)
	MarkApplied(ctx context.Context, correlationID string, index int) error
}

type rewardGrantRepository struct{}

func NewRewardGrantRepository() *rewardGrantRepository {
	return &rewardGrantRepository{}
}

func (r *rewardGrantRepository) CreateIfAbsent(ctx context.Context, data *entity.RewardGrant) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
}

func (r *rewardGrantRepository) GetByCorrelationID(
	ctx context.Context, correlationID string,
) ([]entity.RewardGrant, error) {
	var result []entity.RewardGrant
	err := xcontext.DB(ctx).
		Where("correlation_id=?", correlationID).
		Order("reward_index").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardGrantRepository) MarkApplied(ctx context.Context, correlationID string, index int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.RewardGrant{}).
		Where("correlation_id=? AND reward_index=?", correlationID, index).
		Update("status", entity.RewardGrantApplied)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
