package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestProgressKey struct {
	UserID     string
	RotationID string
	QuestID    string
}

type QuestProgressRepository interface {
	// CreateIfAbsent inserts the progress and one zero counter per
	// requirement. Existing rows are left untouched.
	CreateIfAbsent(ctx context.Context, data *entity.QuestProgress, requirementCount int) error
	Get(ctx context.Context, key QuestProgressKey) (*entity.QuestProgress, error)
	GetCounters(ctx context.Context, key QuestProgressKey) ([]entity.QuestProgressCounter, error)
	GetListByRotation(ctx context.Context, userID, rotationID string) ([]entity.QuestProgress, error)
	GetCountersByRotation(ctx context.Context, userID, rotationID string) ([]entity.QuestProgressCounter, error)

	// IncreaseCounter adds increment to the counter without ever going above
	// cap. It does nothing if the progress is already completed and reports
	// whether the counter row was touched.
	IncreaseCounter(ctx context.Context, key QuestProgressKey, index, increment, cap int) (bool, error)

	// Complete marks the progress completed if it is not completed yet and
	// the completion count is still under maxCompletions.
	Complete(ctx context.Context, key QuestProgressKey, maxCompletions int, now time.Time) (bool, error)

	// ReserveClaim flips rewards_claimed from false to true on a completed
	// progress. A reservation which was never stamped can be taken over once
	// it is older than lease. Only one caller can win the reservation.
	ReserveClaim(ctx context.Context, key QuestProgressKey, now time.Time, lease time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, key QuestProgressKey) error
	StampClaimed(ctx context.Context, key QuestProgressKey, now time.Time) error
}

type questProgressRepository struct{}

func NewQuestProgressRepository() *questProgressRepository {
	return &questProgressRepository{}
}

func (r *questProgressRepository) CreateIfAbsent(
	ctx context.Context, data *entity.QuestProgress, requirementCount int,
) error {
	err := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
	if err != nil {
		return err
	}

	if requirementCount == 0 {
		return nil
	}

	counters := make([]entity.QuestProgressCounter, 0, requirementCount)
	for i := 0; i < requirementCount; i++ {
		counters = append(counters, entity.QuestProgressCounter{
			UserID:           data.UserID,
			RotationID:       data.RotationID,
			QuestID:          data.QuestID,
			RequirementIndex: i,
		})
	}

	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&counters).Error
}

func (r *questProgressRepository) Get(ctx context.Context, key QuestProgressKey) (*entity.QuestProgress, error) {
	var result entity.QuestProgress
	err := xcontext.DB(ctx).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questProgressRepository) GetCounters(
	ctx context.Context, key QuestProgressKey,
) ([]entity.QuestProgressCounter, error) {
	var result []entity.QuestProgressCounter
	err := xcontext.DB(ctx).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Order("requirement_index").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questProgressRepository) GetListByRotation(
	ctx context.Context, userID, rotationID string,
) ([]entity.QuestProgress, error) {
	var result []entity.QuestProgress
	err := xcontext.DB(ctx).
		Where("user_id=? AND rotation_id=?", userID, rotationID).
		Order("created_at").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questProgressRepository) GetCountersByRotation(
	ctx context.Context, userID, rotationID string,
) ([]entity.QuestProgressCounter, error) {
	var result []entity.QuestProgressCounter
	err := xcontext.DB(ctx).
		Where("user_id=? AND rotation_id=?", userID, rotationID).
		Order("quest_id").
		Order("requirement_index").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questProgressRepository) IncreaseCounter(
	ctx context.Context, key QuestProgressKey, index, increment, cap int,
) (bool, error) {
	notCompleted := xcontext.DB(ctx).
		Model(&entity.QuestProgress{}).
		Select("1").
		Where("user_id=? AND rotation_id=? AND quest_id=? AND completed=?",
			key.UserID, key.RotationID, key.QuestID, false)

	tx := xcontext.DB(ctx).
		Model(&entity.QuestProgressCounter{}).
		Where("user_id=? AND rotation_id=? AND quest_id=? AND requirement_index=?",
			key.UserID, key.RotationID, key.QuestID, index).
		Where("EXISTS (?)", notCompleted).
		Update("progress", gorm.Expr(
			"CASE WHEN progress+? >= ? THEN ? ELSE progress+? END",
			increment, cap, cap, increment,
		))

	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected > 1 {
		return false, errors.New("the number of affected rows is invalid")
	}

	return tx.RowsAffected == 1, nil
}

func (r *questProgressRepository) Complete(
	ctx context.Context, key QuestProgressKey, maxCompletions int, now time.Time,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestProgress{}).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Where("completed=? AND completion_count<?", false, maxCompletions).
		Updates(map[string]any{
			"completed":        true,
			"completed_at":     sql.NullTime{Valid: true, Time: now.UTC()},
			"completion_count": gorm.Expr("completion_count+1"),
		})

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *questProgressRepository) ReserveClaim(
	ctx context.Context, key QuestProgressKey, now time.Time, lease time.Duration,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestProgress{}).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Where("completed=? AND rewards_claimed_at IS NULL", true).
		Where("(rewards_claimed=? OR rewards_reserved_at<?)", false, now.Add(-lease).UTC()).
		Updates(map[string]any{
			"rewards_claimed":     true,
			"rewards_reserved_at": sql.NullTime{Valid: true, Time: now.UTC()},
		})

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *questProgressRepository) ReleaseClaim(ctx context.Context, key QuestProgressKey) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestProgress{}).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Where("rewards_claimed=? AND rewards_claimed_at IS NULL", true).
		Update("rewards_claimed", false)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *questProgressRepository) StampClaimed(ctx context.Context, key QuestProgressKey, now time.Time) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestProgress{}).
		Where("user_id=? AND rotation_id=? AND quest_id=?", key.UserID, key.RotationID, key.QuestID).
		Where("rewards_claimed=?", true).
		Update("rewards_claimed_at", sql.NullTime{Valid: true, Time: now.UTC()})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
