package repository

import (
	"context"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type QuestRotationRepository interface {
	// CreateIfAbsent inserts the rotation unless one already exists for the
	// same guild, type and window start. It reports whether the row was
	// inserted.
	CreateIfAbsent(ctx context.Context, data *entity.QuestRotation) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.QuestRotation, error)
	GetByWindow(ctx context.Context, guildID string, rotationType entity.RotationType, startsAt time.Time) (*entity.QuestRotation, error)
	GetActive(ctx context.Context, guildID string, now time.Time) ([]entity.QuestRotation, error)
	GetEndedBetween(ctx context.Context, guildID string, rotationType entity.RotationType, from, to time.Time) ([]entity.QuestRotation, error)
	DeleteEndedBefore(ctx context.Context, before time.Time) (int64, error)
}

type questRotationRepository struct{}

func NewQuestRotationRepository() *questRotationRepository {
	return &questRotationRepository{}
}

func (r *questRotationRepository) CreateIfAbsent(ctx context.Context, data *entity.QuestRotation) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *questRotationRepository) GetByID(ctx context.Context, id string) (*entity.QuestRotation, error) {
	var result entity.QuestRotation
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questRotationRepository) GetByWindow(
	ctx context.Context, guildID string, rotationType entity.RotationType, startsAt time.Time,
) (*entity.QuestRotation, error) {
	var result entity.QuestRotation
	err := xcontext.DB(ctx).
		Where("guild_id=? AND type=? AND starts_at=?", guildID, rotationType, startsAt.UTC()).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questRotationRepository) GetActive(
	ctx context.Context, guildID string, now time.Time,
) ([]entity.QuestRotation, error) {
	var result []entity.QuestRotation
	err := xcontext.DB(ctx).
		Where("guild_id=? AND starts_at<=? AND ends_at>?", guildID, now.UTC(), now.UTC()).
		Order("starts_at").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRotationRepository) GetEndedBetween(
	ctx context.Context, guildID string, rotationType entity.RotationType, from, to time.Time,
) ([]entity.QuestRotation, error) {
	var result []entity.QuestRotation
	err := xcontext.DB(ctx).
		Where("guild_id=? AND type=? AND ends_at>? AND ends_at<=?", guildID, rotationType, from.UTC(), to.UTC()).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRotationRepository) DeleteEndedBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Where("ends_at<?", before.UTC()).Delete(&entity.QuestRotation{})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
