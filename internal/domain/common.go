package domain

import (
	"context"
	"errors"
	"regexp"

	"github.com/fatih/structs"
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/enum"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"gorm.io/gorm"
)

const maxQuestIDLength = 64

var questIDRegex = regexp.MustCompile("^[a-z0-9_]+$")

func checkQuestID(id string) error {
	if len(id) == 0 {
		return errorx.New(errorx.InvalidTemplate, "Quest id is required")
	}

	if len(id) > maxQuestIDLength {
		return errorx.New(errorx.InvalidTemplate, "Quest id too long (at most %d characters)", maxQuestIDLength)
	}

	if !questIDRegex.MatchString(id) {
		return errorx.New(errorx.InvalidTemplate, "Quest id contains invalid characters")
	}

	return nil
}

// validateQuestTemplate checks every field of the template and replaces the
// requirement and reward data with their normalized form.
func validateQuestTemplate(ctx context.Context, factory questclaim.Factory, template *entity.QuestTemplate) error {
	if err := checkQuestID(template.ID); err != nil {
		return err
	}

	if template.Name == "" {
		return errorx.New(errorx.InvalidTemplate, "Quest name is required")
	}

	if _, err := enum.ToEnum[entity.QuestCategory](string(template.Category)); err != nil {
		return errorx.New(errorx.InvalidTemplate, "Invalid category %s", template.Category)
	}

	if _, err := enum.ToEnum[entity.QuestDifficulty](string(template.Difficulty)); err != nil {
		return errorx.New(errorx.InvalidTemplate, "Invalid difficulty %s", template.Difficulty)
	}

	if len(template.Requirements) == 0 {
		return errorx.New(errorx.InvalidTemplate, "Quest needs at least one requirement")
	}

	if len(template.Rewards) == 0 {
		return errorx.New(errorx.InvalidTemplate, "Quest needs at least one reward")
	}

	if template.MaxCompletions < 1 {
		return errorx.New(errorx.InvalidTemplate, "Max completions must be at least 1")
	}

	if template.FeaturedMultiplier < 1 {
		return errorx.New(errorx.InvalidTemplate, "Featured multiplier must be at least 1")
	}

	if template.CooldownHours < 0 {
		return errorx.New(errorx.InvalidTemplate, "Cooldown hours must not be negative")
	}

	if template.MinLevel < 0 {
		return errorx.New(errorx.InvalidTemplate, "Min level must not be negative")
	}

	for i, data := range template.Requirements {
		requirement, err := questclaim.NewRequirement(ctx, data)
		if err != nil {
			return err
		}

		template.Requirements[i].Data = structs.Map(requirement)
	}

	for i, data := range template.Rewards {
		reward, err := factory.NewReward(ctx, data)
		if err != nil {
			return err
		}

		template.Rewards[i].Data = reward.Data()
	}

	return nil
}

// getEnabledTemplate loads a template and makes sure it can still progress.
func getEnabledTemplate(
	ctx context.Context, templateRepo repository.QuestTemplateRepository, guildID, questID string,
) (*entity.QuestTemplate, error) {
	template, err := templateRepo.Get(ctx, guildID, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotFound, "Not found quest %s", questID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get quest")
	}

	if !template.Enabled {
		return nil, errorx.New(errorx.QuestDisabled, "Quest %s is disabled", questID)
	}

	return template, nil
}
