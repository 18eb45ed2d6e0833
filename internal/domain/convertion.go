package domain

import (
	"database/sql"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.UTC().Format(defaultTimeLayout)
}

func convertRequirements(entityRequirements []entity.Requirement) []model.Requirement {
	modelRequirements := []model.Requirement{}
	for _, r := range entityRequirements {
		modelRequirements = append(modelRequirements, model.Requirement{
			Type:   string(r.Type),
			Target: r.Target,
			Data:   r.Data,
		})
	}
	return modelRequirements
}

func convertRewards(entityRewards []entity.Reward) []model.Reward {
	modelRewards := []model.Reward{}
	for _, r := range entityRewards {
		modelRewards = append(modelRewards, model.Reward{Type: string(r.Type), Data: r.Data})
	}
	return modelRewards
}

func convertEntityRequirements(modelRequirements []model.Requirement) entity.Array[entity.Requirement] {
	entityRequirements := entity.Array[entity.Requirement]{}
	for _, r := range modelRequirements {
		entityRequirements = append(entityRequirements, entity.Requirement{
			Type:   entity.RequirementType(r.Type),
			Target: r.Target,
			Data:   r.Data,
		})
	}
	return entityRequirements
}

func convertEntityRewards(modelRewards []model.Reward) entity.Array[entity.Reward] {
	entityRewards := entity.Array[entity.Reward]{}
	for _, r := range modelRewards {
		entityRewards = append(entityRewards, entity.Reward{Type: entity.RewardType(r.Type), Data: r.Data})
	}
	return entityRewards
}

func convertQuestTemplate(template *entity.QuestTemplate) model.QuestTemplate {
	if template == nil {
		return model.QuestTemplate{}
	}

	return model.QuestTemplate{
		GuildID:            template.GuildID,
		ID:                 template.ID,
		Name:               template.Name,
		Description:        template.Description,
		Category:           string(template.Category),
		Difficulty:         string(template.Difficulty),
		Requirements:       convertRequirements(template.Requirements),
		Rewards:            convertRewards(template.Rewards),
		CooldownHours:      template.CooldownHours,
		MaxCompletions:     template.MaxCompletions,
		MinLevel:           template.MinLevel,
		CanBeFeatured:      template.CanBeFeatured,
		FeaturedMultiplier: template.FeaturedMultiplier,
		Enabled:            template.Enabled,
		CreatedBy:          template.CreatedBy,
		CreatedAt:          template.CreatedAt.Format(defaultTimeLayout),
		UpdatedAt:          template.UpdatedAt.Format(defaultTimeLayout),
	}
}

func convertQuestRotation(rotation *entity.QuestRotation) model.QuestRotation {
	if rotation == nil {
		return model.QuestRotation{}
	}

	return model.QuestRotation{
		ID:              rotation.ID,
		GuildID:         rotation.GuildID,
		Type:            string(rotation.Type),
		StartsAt:        rotation.StartsAt.UTC().Format(defaultTimeLayout),
		EndsAt:          rotation.EndsAt.UTC().Format(defaultTimeLayout),
		QuestIDs:        rotation.QuestIDs,
		FeaturedQuestID: rotation.FeaturedQuestID.String,
		CreatedAt:       rotation.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertQuestProgress(progress *entity.QuestProgress, counters []entity.QuestProgressCounter) model.QuestProgress {
	if progress == nil {
		return model.QuestProgress{}
	}

	values := make([]int, len(counters))
	for _, c := range counters {
		if c.RequirementIndex >= 0 && c.RequirementIndex < len(values) {
			values[c.RequirementIndex] = c.Progress
		}
	}

	return model.QuestProgress{
		UserID:           progress.UserID,
		GuildID:          progress.GuildID,
		RotationID:       progress.RotationID,
		QuestID:          progress.QuestID,
		Counters:         values,
		Completed:        progress.Completed,
		CompletedAt:      formatNullTime(progress.CompletedAt),
		CompletionCount:  progress.CompletionCount,
		RewardsClaimed:   progress.RewardsClaimed,
		RewardsClaimedAt: formatNullTime(progress.RewardsClaimedAt),
	}
}
