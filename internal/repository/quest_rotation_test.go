package repository_test

import (
	"testing"
	"time"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_questRotationRepository_CreateIfAbsent(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestRotationRepository()

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateIfAbsent(ctx, &entity.QuestRotation{
		ID:       "rotation1",
		GuildID:  "guild1",
		Type:     entity.DailyRotation,
		StartsAt: start,
		EndsAt:   start.Add(24 * time.Hour),
		QuestIDs: []string{"q1", "q2"},
	})
	require.NoError(t, err)
	require.True(t, created)

	// Same window, different id.
	created, err = repo.CreateIfAbsent(ctx, &entity.QuestRotation{
		ID:       "rotation2",
		GuildID:  "guild1",
		Type:     entity.DailyRotation,
		StartsAt: start,
		EndsAt:   start.Add(24 * time.Hour),
		QuestIDs: []string{"q3"},
	})
	require.NoError(t, err)
	require.False(t, created)

	rotation, err := repo.GetByWindow(ctx, "guild1", entity.DailyRotation, start)
	require.NoError(t, err)
	require.Equal(t, "rotation1", rotation.ID)
	require.Equal(t, []string{"q1", "q2"}, []string(rotation.QuestIDs))

	// Other type in the same window is allowed.
	created, err = repo.CreateIfAbsent(ctx, &entity.QuestRotation{
		ID:       "rotation3",
		GuildID:  "guild1",
		Type:     entity.WeeklyRotation,
		StartsAt: start,
		EndsAt:   start.Add(7 * 24 * time.Hour),
		QuestIDs: []string{"q1"},
	})
	require.NoError(t, err)
	require.True(t, created)
}

func Test_questRotationRepository_GetActive(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestRotationRepository()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rotations := []*entity.QuestRotation{
		{ID: "past", GuildID: "guild1", Type: entity.DailyRotation,
			StartsAt: now.Add(-36 * time.Hour), EndsAt: now.Add(-12 * time.Hour)},
		{ID: "current", GuildID: "guild1", Type: entity.DailyRotation,
			StartsAt: now.Add(-12 * time.Hour), EndsAt: now.Add(12 * time.Hour)},
		{ID: "ends_now", GuildID: "guild1", Type: entity.FeaturedRotation,
			StartsAt: now.Add(-24 * time.Hour), EndsAt: now},
		{ID: "other_guild", GuildID: "guild2", Type: entity.DailyRotation,
			StartsAt: now.Add(-12 * time.Hour), EndsAt: now.Add(12 * time.Hour)},
	}
	for _, r := range rotations {
		_, err := repo.CreateIfAbsent(ctx, r)
		require.NoError(t, err)
	}

	active, err := repo.GetActive(ctx, "guild1", now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "current", active[0].ID)

	ended, err := repo.GetEndedBetween(ctx, "guild1", entity.DailyRotation, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, ended, 1)
	require.Equal(t, "past", ended[0].ID)

	deleted, err := repo.DeleteEndedBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, "past")
	require.Error(t, err)
}
