package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestQuestTemplateDomain() *questTemplateDomain {
	return NewQuestTemplateDomain(
		repository.NewQuestTemplateRepository(),
		repository.NewQuestRotationRepository(),
		newMockRewardFactory(),
	)
}

func Test_questTemplateDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID("admin1")
	domain := newTestQuestTemplateDomain()

	resp, err := domain.Create(ctx, newCreateQuestTemplateRequest("guild1", "daily_work"))
	require.NoError(t, err)
	require.Equal(t, "daily_work", resp.ID)
	require.Equal(t, "admin1", resp.CreatedBy)
	require.True(t, resp.Enabled)
	require.Equal(t, float64(1), resp.FeaturedMultiplier)

	// Reward data is normalized with its default source.
	require.Equal(t, "mint", resp.Rewards[0].Data["source"])

	got, err := domain.Get(ctx, &model.GetQuestTemplateRequest{GuildID: "guild1", ID: "daily_work"})
	require.NoError(t, err)
	require.Equal(t, "Daily work", got.Name)
	require.Equal(t, 3, got.Requirements[0].Target)

	_, err = domain.Get(ctx, &model.GetQuestTemplateRequest{GuildID: "guild2", ID: "daily_work"})
	require.True(t, errorx.Is(err, errorx.QuestNotFound))
}

func Test_questTemplateDomain_Create_Failed(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*model.CreateQuestTemplateRequest)
		wantCode errorx.Code
	}{
		{
			name:     "no requirement",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.Requirements = nil },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "no reward",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.Rewards = nil },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "invalid id",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.ID = "Daily Work" },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "invalid category",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.Category = "shopping" },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "invalid difficulty",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.Difficulty = "trivial" },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "zero target",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.Requirements[0].Target = 0 },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name: "zero reward amount",
			modify: func(req *model.CreateQuestTemplateRequest) {
				req.Rewards[0].Data = map[string]any{"currency_id": "gold", "amount": 0}
			},
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "featured multiplier below one",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.FeaturedMultiplier = 0.5 },
			wantCode: errorx.InvalidTemplate,
		},
		{
			name:     "negative max completions",
			modify:   func(req *model.CreateQuestTemplateRequest) { req.MaxCompletions = -1 },
			wantCode: errorx.InvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			req := newCreateQuestTemplateRequest("guild1", "daily_work")
			tt.modify(req)

			_, err := newTestQuestTemplateDomain().Create(ctx, req)
			require.True(t, errorx.Is(err, tt.wantCode), "got %v", err)

			// Nothing is written when validation fails.
			count, err := repository.NewQuestTemplateRepository().Count(ctx, "guild1")
			require.NoError(t, err)
			require.Zero(t, count)
		})
	}
}

func Test_questTemplateDomain_Create_DuplicateAndCapacity(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	_, err := domain.Create(ctx, newCreateQuestTemplateRequest("guild1", "daily_work"))
	require.NoError(t, err)

	_, err = domain.Create(ctx, newCreateQuestTemplateRequest("guild1", "daily_work"))
	require.True(t, errorx.Is(err, errorx.DuplicateQuestID))

	// The same id is fine in another guild.
	_, err = domain.Create(ctx, newCreateQuestTemplateRequest("guild2", "daily_work"))
	require.NoError(t, err)

	limit := 20
	for i := 1; i < limit; i++ {
		_, err := domain.Create(ctx, newCreateQuestTemplateRequest("guild1", fmt.Sprintf("quest_%d", i)))
		require.NoError(t, err)
	}

	_, err = domain.Create(ctx, newCreateQuestTemplateRequest("guild1", "one_too_many"))
	require.True(t, errorx.Is(err, errorx.CapacityExceeded))
}

func Test_questTemplateDomain_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	hard := newCreateQuestTemplateRequest("guild1", "boss_fight")
	hard.Name = "Boss fight"
	hard.Difficulty = "hard"
	hard.Category = "minigame"
	hard.CanBeFeatured = true

	disabled := newCreateQuestTemplateRequest("guild1", "old_quest")
	disabled.Name = "Old quest"
	enabled := false
	disabled.Enabled = &enabled

	for _, req := range []*model.CreateQuestTemplateRequest{
		newCreateQuestTemplateRequest("guild1", "daily_work"), hard, disabled,
	} {
		_, err := domain.Create(ctx, req)
		require.NoError(t, err)
	}

	resp, err := domain.GetList(ctx, &model.GetListQuestTemplateRequest{GuildID: "guild1", SortBy: "difficulty", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, resp.Templates, 3)
	require.Equal(t, "boss_fight", resp.Templates[0].ID)

	resp, err = domain.GetList(ctx, &model.GetListQuestTemplateRequest{GuildID: "guild1", Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, resp.Templates, 1)
	require.Equal(t, "old_quest", resp.Templates[0].ID)

	featurable := true
	resp, err = domain.GetList(ctx, &model.GetListQuestTemplateRequest{
		GuildID: "guild1", Category: "minigame", CanBeFeatured: &featurable,
	})
	require.NoError(t, err)
	require.Len(t, resp.Templates, 1)

	_, err = domain.GetList(ctx, &model.GetListQuestTemplateRequest{GuildID: "guild1", SortBy: "reward"})
	require.True(t, errorx.Is(err, errorx.InvalidTemplate))

	_, err = domain.GetList(ctx, &model.GetListQuestTemplateRequest{GuildID: "guild1", Difficulty: "trivial"})
	require.True(t, errorx.Is(err, errorx.InvalidTemplate))
}

func Test_questTemplateDomain_Update(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	_, err := domain.Create(ctx, newCreateQuestTemplateRequest("guild1", "daily_work"))
	require.NoError(t, err)

	name := "Work hard"
	disabled := false
	resp, err := domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1",
		ID:      "daily_work",
		Name:    &name,
		Enabled: &disabled,
		Rewards: []model.Reward{{Type: "xp", Data: map[string]any{"amount": 25}}},
	})
	require.NoError(t, err)
	require.Equal(t, "Work hard", resp.Name)
	require.False(t, resp.Enabled)
	require.Len(t, resp.Rewards, 1)
	require.Equal(t, "xp", resp.Rewards[0].Type)
	require.Equal(t, "economy", resp.Category)

	// An invalid patch leaves the template untouched.
	multiplier := 0.1
	_, err = domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1", ID: "daily_work", FeaturedMultiplier: &multiplier,
	})
	require.True(t, errorx.Is(err, errorx.InvalidTemplate))

	_, err = domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1", ID: "daily_work", Requirements: []model.Requirement{},
	})
	require.True(t, errorx.Is(err, errorx.InvalidTemplate))

	_, err = domain.Update(ctx, &model.UpdateQuestTemplateRequest{GuildID: "guild1", ID: "unknown", Name: &name})
	require.True(t, errorx.Is(err, errorx.QuestNotFound))
}

func Test_questTemplateDomain_Update_RequirementsInActiveRotation(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	testutil.InsertQuestTemplates(ctx,
		testutil.NewQuestTemplate("guild1", "in_rotation", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "unused", entity.DifficultyEasy),
	)
	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "in_rotation")

	requirements := []model.Requirement{
		{Type: "do_command", Target: 2, Data: map[string]any{"command": "work"}},
	}

	_, err := domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1", ID: "in_rotation", Requirements: requirements,
	})
	require.True(t, errorx.Is(err, errorx.UpdateFailed))

	got, err := domain.Get(ctx, &model.GetQuestTemplateRequest{GuildID: "guild1", ID: "in_rotation"})
	require.NoError(t, err)
	require.Equal(t, 1, got.Requirements[0].Target)

	// Other fields of a quest in an active rotation can still change.
	name := "Renamed"
	resp, err := domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1", ID: "in_rotation", Name: &name,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", resp.Name)

	resp, err = domain.Update(ctx, &model.UpdateQuestTemplateRequest{
		GuildID: "guild1", ID: "unused", Requirements: requirements,
	})
	require.NoError(t, err)
	require.Len(t, resp.Requirements, 1)
	require.Equal(t, 2, resp.Requirements[0].Target)
}

func Test_questTemplateDomain_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	testutil.InsertQuestTemplates(ctx,
		testutil.NewQuestTemplate("guild1", "in_rotation", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "unused", entity.DifficultyEasy),
	)
	testutil.InsertQuestRotation(ctx, "rotation1", "guild1", entity.DailyRotation, time.Now(), "", "in_rotation")

	_, err := domain.Delete(ctx, &model.DeleteQuestTemplateRequest{GuildID: "guild1", ID: "in_rotation"})
	require.True(t, errorx.Is(err, errorx.UpdateFailed))

	resp, err := domain.Delete(ctx, &model.DeleteQuestTemplateRequest{GuildID: "guild1", ID: "unused"})
	require.NoError(t, err)
	require.True(t, resp.Deleted)

	resp, err = domain.Delete(ctx, &model.DeleteQuestTemplateRequest{GuildID: "guild1", ID: "unused"})
	require.NoError(t, err)
	require.False(t, resp.Deleted)
}

func Test_questTemplateDomain_Import(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestTemplateDomain()

	invalid := newCreateQuestTemplateRequest("", "broken")
	invalid.Requirements = nil

	resp, err := domain.Import(ctx, &model.ImportQuestTemplatesRequest{
		GuildID: "guild1",
		Templates: []model.CreateQuestTemplateRequest{
			*newCreateQuestTemplateRequest("", "daily_work"),
			*invalid,
			*newCreateQuestTemplateRequest("", "daily_work"),
			*newCreateQuestTemplateRequest("", "daily_fish"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"daily_work", "daily_fish"}, resp.Created)
	require.Equal(t, []model.ImportIssue{
		{ID: "broken", Code: "INVALID_TEMPLATE", Message: "Quest needs at least one requirement"},
		{ID: "daily_work", Code: "DUPLICATE_QUEST_ID", Message: "Quest daily_work already exists in guild guild1"},
	}, resp.Issues)

	count, err := repository.NewQuestTemplateRepository().Count(ctx, "guild1")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
