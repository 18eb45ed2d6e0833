package questclaim

import (
	"context"

	"github.com/questx-lab/questengine/internal/client"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/errorx"
)

type Factory struct {
	currencyLedger client.CurrencyLedgerCaller
	xpLedger       client.XPLedgerCaller
	itemLedger     client.ItemLedgerCaller
}

func NewFactory(
	currencyLedger client.CurrencyLedgerCaller,
	xpLedger client.XPLedgerCaller,
	itemLedger client.ItemLedgerCaller,
) Factory {
	return Factory{
		currencyLedger: currencyLedger,
		xpLedger:       xpLedger,
		itemLedger:     itemLedger,
	}
}

// Reward Factory
func (f Factory) NewReward(ctx context.Context, data entity.Reward) (Reward, error) {
	var reward Reward
	var err error
	switch data.Type {
	case entity.CurrencyReward:
		reward, err = newCurrencyReward(ctx, f, data.Data)

	case entity.XPReward:
		reward, err = newXPReward(ctx, f, data.Data)

	case entity.ItemReward:
		reward, err = newItemReward(ctx, f, data.Data)

	case entity.QuestTokenReward:
		reward, err = newQuestTokenReward(ctx, f, data.Data)

	default:
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid reward type %s", data.Type)
	}

	if err != nil {
		return nil, err
	}

	return reward, nil
}

// NewRewards parses every reward of a template in order.
func (f Factory) NewRewards(ctx context.Context, data []entity.Reward) ([]Reward, error) {
	rewards := make([]Reward, 0, len(data))
	for _, d := range data {
		r, err := f.NewReward(ctx, d)
		if err != nil {
			return nil, err
		}

		rewards = append(rewards, r)
	}

	return rewards, nil
}
