package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestTemplateFilter struct {
	Category      entity.QuestCategory
	Difficulty    entity.QuestDifficulty
	Enabled       *bool
	CanBeFeatured *bool
}

type QuestTemplateSortField string

const (
	SortByName       QuestTemplateSortField = "name"
	SortByCreatedAt  QuestTemplateSortField = "created_at"
	SortByDifficulty QuestTemplateSortField = "difficulty"
)

type QuestTemplateSort struct {
	Field QuestTemplateSortField
	Desc  bool
}

type QuestTemplateRepository interface {
	Create(ctx context.Context, data *entity.QuestTemplate) error
	Get(ctx context.Context, guildID, id string) (*entity.QuestTemplate, error)
	GetList(ctx context.Context, guildID string, filter QuestTemplateFilter, sort QuestTemplateSort) ([]entity.QuestTemplate, error)
	GetByIDs(ctx context.Context, guildID string, ids []string) ([]entity.QuestTemplate, error)
	GetEnabled(ctx context.Context, guildID string) ([]entity.QuestTemplate, error)
	Count(ctx context.Context, guildID string) (int64, error)
	GetGuildIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, guildID, id string, patch map[string]any) error
	Delete(ctx context.Context, guildID, id string) (bool, error)
}

type questTemplateRepository struct{}

func NewQuestTemplateRepository() *questTemplateRepository {
	return &questTemplateRepository{}
}

func (r *questTemplateRepository) Create(ctx context.Context, data *entity.QuestTemplate) error {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return errorx.New(errorx.DuplicateQuestID, "Quest %s already exists in guild %s", data.ID, data.GuildID)
	}

	return nil
}

func (r *questTemplateRepository) Get(ctx context.Context, guildID, id string) (*entity.QuestTemplate, error) {
	var result entity.QuestTemplate
	err := xcontext.DB(ctx).Where("guild_id=? AND id=?", guildID, id).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questTemplateRepository) GetList(
	ctx context.Context, guildID string, filter QuestTemplateFilter, sort QuestTemplateSort,
) ([]entity.QuestTemplate, error) {
	tx := xcontext.DB(ctx).Where("guild_id=?", guildID)

	if filter.Category != "" {
		tx = tx.Where("category=?", filter.Category)
	}

	if filter.Difficulty != "" {
		tx = tx.Where("difficulty=?", filter.Difficulty)
	}

	if filter.Enabled != nil {
		tx = tx.Where("enabled=?", *filter.Enabled)
	}

	if filter.CanBeFeatured != nil {
		tx = tx.Where("can_be_featured=?", *filter.CanBeFeatured)
	}

	switch sort.Field {
	case SortByDifficulty:
		tx = tx.Order(difficultyOrder + direction(sort.Desc))
	case SortByName, SortByCreatedAt:
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: string(sort.Field)}, Desc: sort.Desc})
	}

	// Keep a stable order between equal keys.
	tx = tx.Order("id")

	var result []entity.QuestTemplate
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questTemplateRepository) GetByIDs(
	ctx context.Context, guildID string, ids []string,
) ([]entity.QuestTemplate, error) {
	var result []entity.QuestTemplate
	err := xcontext.DB(ctx).Where("guild_id=? AND id IN (?)", guildID, ids).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questTemplateRepository) GetEnabled(ctx context.Context, guildID string) ([]entity.QuestTemplate, error) {
	var result []entity.QuestTemplate
	err := xcontext.DB(ctx).
		Where("guild_id=? AND enabled=?", guildID, true).
		Order("id").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questTemplateRepository) Count(ctx context.Context, guildID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.QuestTemplate{}).Where("guild_id=?", guildID).Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *questTemplateRepository) GetGuildIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.QuestTemplate{}).
		Where("enabled=?", true).
		Distinct().
		Pluck("guild_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questTemplateRepository) Update(ctx context.Context, guildID, id string, patch map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestTemplate{}).
		Where("guild_id=? AND id=?", guildID, id).
		Updates(patch)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *questTemplateRepository) Delete(ctx context.Context, guildID, id string) (bool, error) {
	tx := xcontext.DB(ctx).
		Where("guild_id=? AND id=?", guildID, id).
		Delete(&entity.QuestTemplate{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

// difficultyOrder ranks difficulties from easy to legendary.
var difficultyOrder = fmt.Sprintf(
	"CASE difficulty WHEN '%s' THEN 0 WHEN '%s' THEN 1 WHEN '%s' THEN 2 WHEN '%s' THEN 3 ELSE 4 END",
	entity.DifficultyEasy,
	entity.DifficultyMedium,
	entity.DifficultyHard,
	entity.DifficultyExpert,
)

func direction(desc bool) string {
	if desc {
		return " DESC"
	}

	return " ASC"
}
