package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

// NewQuestTemplate returns an enabled template which requires one "work"
// command and rewards 100 XP.
func NewQuestTemplate(guildID, id string, difficulty entity.QuestDifficulty) *entity.QuestTemplate {
	return &entity.QuestTemplate{
		GuildID:     guildID,
		ID:          id,
		Name:        fmt.Sprintf("Quest %s", id),
		Description: "Fixture quest",
		Category:    entity.CategoryGeneral,
		Difficulty:  difficulty,
		Requirements: entity.Array[entity.Requirement]{
			{
				Type:   entity.RequirementDoCommand,
				Target: 1,
				Data:   entity.Map{"command": "work"},
			},
		},
		Rewards: entity.Array[entity.Reward]{
			{Type: entity.XPReward, Data: entity.Map{"amount": 100}},
		},
		MaxCompletions:     1,
		FeaturedMultiplier: 1,
		Enabled:            true,
		CreatedBy:          "fixture",
	}
}

func InsertQuestTemplates(ctx context.Context, templates ...*entity.QuestTemplate) {
	for _, t := range templates {
		if err := xcontext.DB(ctx).Create(t).Error; err != nil {
			panic(err)
		}
	}
}

// InsertQuestRotation stores a rotation which is active at now.
func InsertQuestRotation(
	ctx context.Context,
	id, guildID string,
	rotationType entity.RotationType,
	now time.Time,
	featuredQuestID string,
	questIDs ...string,
) *entity.QuestRotation {
	rotation := &entity.QuestRotation{
		ID:       id,
		GuildID:  guildID,
		Type:     rotationType,
		StartsAt: now.UTC().Add(-time.Hour).Truncate(time.Second),
		EndsAt:   now.UTC().Add(23 * time.Hour).Truncate(time.Second),
		QuestIDs: questIDs,
	}

	if featuredQuestID != "" {
		rotation.FeaturedQuestID.Valid = true
		rotation.FeaturedQuestID.String = featuredQuestID
	}

	if err := xcontext.DB(ctx).Create(rotation).Error; err != nil {
		panic(err)
	}

	return rotation
}
