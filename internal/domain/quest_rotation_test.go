package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/testutil"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestQuestRotationDomain() *questRotationDomain {
	return NewQuestRotationDomain(
		repository.NewQuestTemplateRepository(),
		repository.NewQuestRotationRepository(),
	)
}

func rotationByType(rotations []model.QuestRotation) map[string]model.QuestRotation {
	result := map[string]model.QuestRotation{}
	for _, r := range rotations {
		result[r.Type] = r
	}
	return result
}

func Test_questRotationDomain_EnsureCurrentRotations(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestRotationDomain()

	featured := testutil.NewQuestTemplate("guild1", "featured_quest", entity.DifficultyMedium)
	featured.CanBeFeatured = true
	featured.FeaturedMultiplier = 2
	testutil.InsertQuestTemplates(ctx,
		testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "quest_b", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "quest_c", entity.DifficultyHard),
		testutil.NewQuestTemplate("guild1", "quest_d", entity.DifficultyLegendary),
		testutil.NewQuestTemplate("guild1", "quest_e", entity.DifficultyMedium),
		featured,
	)

	first, err := domain.EnsureCurrentRotations(ctx, &model.EnsureCurrentRotationsRequest{GuildID: "guild1"})
	require.NoError(t, err)
	require.Len(t, first.Rotations, 3)

	rotations := rotationByType(first.Rotations)
	require.Len(t, rotations["daily"].QuestIDs, 3)
	require.Len(t, rotations["weekly"].QuestIDs, 5)
	require.Equal(t, []string{"featured_quest"}, rotations["featured"].QuestIDs)
	require.Equal(t, "featured_quest", rotations["featured"].FeaturedQuestID)

	for _, r := range first.Rotations {
		seen := map[string]bool{}
		for _, id := range r.QuestIDs {
			require.False(t, seen[id])
			seen[id] = true
		}

		if r.FeaturedQuestID != "" {
			require.Contains(t, r.QuestIDs, r.FeaturedQuestID)
		}
	}

	// A second call returns the same rotations.
	second, err := domain.EnsureCurrentRotations(ctx, &model.EnsureCurrentRotationsRequest{GuildID: "guild1"})
	require.NoError(t, err)
	for _, r := range second.Rotations {
		require.Equal(t, rotations[r.Type].ID, r.ID)
		require.Equal(t, rotations[r.Type].QuestIDs, r.QuestIDs)
	}

	current, err := domain.GetCurrentRotations(ctx, &model.GetCurrentRotationsRequest{GuildID: "guild1"})
	require.NoError(t, err)
	require.Len(t, current.Rotations, 3)

	current, err = domain.GetCurrentRotations(ctx, &model.GetCurrentRotationsRequest{GuildID: "guild2"})
	require.NoError(t, err)
	require.Empty(t, current.Rotations)
}

func Test_questRotationDomain_EnsureCurrentRotations_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestRotationDomain()

	testutil.InsertQuestTemplates(ctx,
		testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "quest_b", entity.DifficultyMedium),
	)

	var wg sync.WaitGroup
	ids := make([]string, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := domain.EnsureCurrentRotations(ctx, &model.EnsureCurrentRotationsRequest{GuildID: "guild1"})
			errs[i] = err
			if err == nil {
				ids[i] = rotationByType(resp.Rotations)["daily"].ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	// Nothing can be featured, so only daily and weekly rotations exist.
	active, err := repository.NewQuestRotationRepository().GetActive(ctx, "guild1", time.Now())
	require.NoError(t, err)
	require.Len(t, active, 2)
}

func Test_questRotationDomain_EnsureCurrentRotations_NoTemplate(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestRotationDomain()

	disabled := testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy)
	disabled.Enabled = false
	testutil.InsertQuestTemplates(ctx, disabled)

	_, err := domain.EnsureCurrentRotations(ctx, &model.EnsureCurrentRotationsRequest{GuildID: "guild1"})
	require.True(t, errorx.Is(err, errorx.InvalidTemplate))
}

func Test_questRotationDomain_EnsureCurrentRotations_Cooldown(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestRotationDomain()

	coolingDown := testutil.NewQuestTemplate("guild1", "quest_a", entity.DifficultyEasy)
	coolingDown.CooldownHours = 48
	testutil.InsertQuestTemplates(ctx,
		coolingDown,
		testutil.NewQuestTemplate("guild1", "quest_b", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "quest_c", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "quest_d", entity.DifficultyEasy),
	)

	now := time.Now().UTC().Truncate(time.Second)
	err := xcontext.DB(ctx).Create(&entity.QuestRotation{
		ID:       "ended",
		GuildID:  "guild1",
		Type:     entity.DailyRotation,
		StartsAt: now.Add(-25 * time.Hour),
		EndsAt:   now.Add(-time.Hour),
		QuestIDs: entity.Array[string]{"quest_a", "quest_b"},
	}).Error
	require.NoError(t, err)

	resp, err := domain.EnsureCurrentRotations(ctx, &model.EnsureCurrentRotationsRequest{GuildID: "guild1"})
	require.NoError(t, err)

	rotations := rotationByType(resp.Rotations)
	require.ElementsMatch(t, []string{"quest_b", "quest_c", "quest_d"}, rotations["daily"].QuestIDs)

	// Cooldown is tracked per rotation type.
	require.Contains(t, rotations["weekly"].QuestIDs, "quest_a")
}

func Test_questRotationDomain_DeleteExpiredRotations(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestQuestRotationDomain()

	now := time.Now().UTC().Truncate(time.Second)
	for id, endsAt := range map[string]time.Time{
		"old":    now.AddDate(0, 0, -40),
		"recent": now.AddDate(0, 0, -2),
	} {
		err := xcontext.DB(ctx).Create(&entity.QuestRotation{
			ID:       id,
			GuildID:  "guild1",
			Type:     entity.DailyRotation,
			StartsAt: endsAt.Add(-24 * time.Hour),
			EndsAt:   endsAt,
			QuestIDs: entity.Array[string]{"quest_a"},
		}).Error
		require.NoError(t, err)
	}

	deleted, err := domain.DeleteExpiredRotations(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = repository.NewQuestRotationRepository().GetByID(ctx, "recent")
	require.NoError(t, err)
}
