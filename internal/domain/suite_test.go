package domain

import (
	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/pkg/testutil"
)

func newMockRewardFactory() questclaim.Factory {
	return questclaim.NewFactory(
		&testutil.MockCurrencyLedgerCaller{},
		&testutil.MockXPLedgerCaller{},
		&testutil.MockItemLedgerCaller{},
	)
}

func newCreateQuestTemplateRequest(guildID, id string) *model.CreateQuestTemplateRequest {
	return &model.CreateQuestTemplateRequest{
		GuildID:    guildID,
		ID:         id,
		Name:       "Daily work",
		Category:   "economy",
		Difficulty: "easy",
		Requirements: []model.Requirement{
			{Type: "do_command", Target: 3, Data: map[string]any{"command": "work"}},
		},
		Rewards: []model.Reward{
			{Type: "currency", Data: map[string]any{"currency_id": "gold", "amount": 50}},
		},
		MaxCompletions: 1,
	}
}
