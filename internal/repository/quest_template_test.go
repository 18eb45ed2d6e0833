package repository_test

import (
	"testing"

	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_questTemplateRepository_Create_Duplicate(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestTemplateRepository()

	require.NoError(t, repo.Create(ctx, testutil.NewQuestTemplate("guild1", "daily_work", entity.DifficultyEasy)))

	err := repo.Create(ctx, testutil.NewQuestTemplate("guild1", "daily_work", entity.DifficultyHard))
	require.True(t, errorx.Is(err, errorx.DuplicateQuestID))

	// Same id in another guild is a different template.
	require.NoError(t, repo.Create(ctx, testutil.NewQuestTemplate("guild2", "daily_work", entity.DifficultyEasy)))

	template, err := repo.Get(ctx, "guild1", "daily_work")
	require.NoError(t, err)
	require.Equal(t, entity.DifficultyEasy, template.Difficulty)
	require.Len(t, template.Requirements, 1)
	require.Equal(t, "work", template.Requirements[0].Data["command"])
}

func Test_questTemplateRepository_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestTemplateRepository()

	easy := testutil.NewQuestTemplate("guild1", "c_easy", entity.DifficultyEasy)
	legendary := testutil.NewQuestTemplate("guild1", "a_legendary", entity.DifficultyLegendary)
	legendary.CanBeFeatured = true
	hard := testutil.NewQuestTemplate("guild1", "b_hard", entity.DifficultyHard)
	hard.Enabled = false
	hard.Category = entity.CategoryEconomy
	testutil.InsertQuestTemplates(ctx, easy, legendary, hard)

	list, err := repo.GetList(ctx, "guild1", repository.QuestTemplateFilter{},
		repository.QuestTemplateSort{Field: repository.SortByDifficulty})
	require.NoError(t, err)
	require.Equal(t, []string{"c_easy", "b_hard", "a_legendary"}, templateIDs(list))

	list, err = repo.GetList(ctx, "guild1", repository.QuestTemplateFilter{},
		repository.QuestTemplateSort{Field: repository.SortByName, Desc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"c_easy", "b_hard", "a_legendary"}, templateIDs(list))

	enabled := true
	list, err = repo.GetList(ctx, "guild1", repository.QuestTemplateFilter{Enabled: &enabled},
		repository.QuestTemplateSort{Field: repository.SortByName})
	require.NoError(t, err)
	require.Equal(t, []string{"a_legendary", "c_easy"}, templateIDs(list))

	featured := true
	list, err = repo.GetList(ctx, "guild1", repository.QuestTemplateFilter{CanBeFeatured: &featured},
		repository.QuestTemplateSort{})
	require.NoError(t, err)
	require.Equal(t, []string{"a_legendary"}, templateIDs(list))

	list, err = repo.GetList(ctx, "guild1", repository.QuestTemplateFilter{Category: entity.CategoryEconomy},
		repository.QuestTemplateSort{})
	require.NoError(t, err)
	require.Equal(t, []string{"b_hard"}, templateIDs(list))

	list, err = repo.GetEnabled(ctx, "guild1")
	require.NoError(t, err)
	require.Equal(t, []string{"a_legendary", "c_easy"}, templateIDs(list))

	count, err := repo.Count(ctx, "guild1")
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func Test_questTemplateRepository_Update(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestTemplateRepository()
	testutil.InsertQuestTemplates(ctx, testutil.NewQuestTemplate("guild1", "daily_work", entity.DifficultyEasy))

	err := repo.Update(ctx, "guild1", "daily_work", map[string]any{"name": "Work hard", "enabled": false})
	require.NoError(t, err)

	template, err := repo.Get(ctx, "guild1", "daily_work")
	require.NoError(t, err)
	require.Equal(t, "Work hard", template.Name)
	require.False(t, template.Enabled)

	err = repo.Update(ctx, "guild1", "missing", map[string]any{"name": "x"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_questTemplateRepository_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestTemplateRepository()
	testutil.InsertQuestTemplates(ctx, testutil.NewQuestTemplate("guild1", "daily_work", entity.DifficultyEasy))

	deleted, err := repo.Delete(ctx, "guild1", "daily_work")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(ctx, "guild1", "daily_work")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = repo.Get(ctx, "guild1", "daily_work")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_questTemplateRepository_GetGuildIDs(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewQuestTemplateRepository()

	disabled := testutil.NewQuestTemplate("guild3", "q1", entity.DifficultyEasy)
	disabled.Enabled = false
	testutil.InsertQuestTemplates(ctx,
		testutil.NewQuestTemplate("guild1", "q1", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild1", "q2", entity.DifficultyEasy),
		testutil.NewQuestTemplate("guild2", "q1", entity.DifficultyEasy),
		disabled,
	)

	guildIDs, err := repo.GetGuildIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"guild1", "guild2"}, guildIDs)
}

func templateIDs(templates []entity.QuestTemplate) []string {
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}

	return ids
}
