package questclaim

import (
	"context"
	"fmt"
	"math"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/enum"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

const (
	QuestTokenCurrencyID   = "quest_token"
	QuestCompleteOperation = "quest_complete"

	systemActorID = "system"
)

type sourceType string

var (
	mintSource     = enum.New(sourceType("mint"))
	treasurySource = enum.New(sourceType("treasury"))
)

// RewardSource is embedded by rewards which are paid either by minting or by
// withdrawing from a guild treasury sector.
type RewardSource struct {
	Source string `mapstructure:"source" structs:"source"`
	Sector string `mapstructure:"sector" structs:"sector,omitempty"`
}

func (r *RewardSource) normalize(ctx context.Context) error {
	if r.Source == "" {
		r.Source = string(mintSource)
	}

	source, err := enum.ToEnum[sourceType](r.Source)
	if err != nil {
		return errorx.New(errorx.InvalidTemplate, "Invalid reward source %s", r.Source)
	}

	if source == treasurySource && r.Sector == "" {
		r.Sector = xcontext.Configs(ctx).Quest.TreasurySector
	}

	if source == mintSource {
		r.Sector = ""
	}

	return nil
}

func (r *RewardSource) actorID() string {
	if sourceType(r.Source) == treasurySource {
		return fmt.Sprintf("%s:%s", treasurySource, r.Sector)
	}

	return string(mintSource)
}

func scaleAmount(amount int64, multiplier float64) int64 {
	return int64(math.Floor(float64(amount) * multiplier))
}

func rewardReason(recipient Recipient) string {
	return fmt.Sprintf("quest_reward:%s:%s", recipient.QuestID, recipient.CorrelationID)
}

// Currency Reward
type currencyReward struct {
	CurrencyID   string `mapstructure:"currency_id" structs:"currency_id"`
	Value        int64  `mapstructure:"amount" structs:"amount"`
	RewardSource `mapstructure:",squash" structs:",flatten"`

	factory Factory
}

func newCurrencyReward(ctx context.Context, factory Factory, data map[string]any) (*currencyReward, error) {
	reward := currencyReward{factory: factory}
	if err := mapstructure.Decode(data, &reward); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode map to struct: %v", err)
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid currency reward")
	}

	if reward.CurrencyID == "" {
		return nil, errorx.New(errorx.InvalidTemplate, "Currency reward needs a currency id")
	}

	if reward.Value < 1 {
		return nil, errorx.New(errorx.InvalidTemplate, "Currency reward amount must be at least 1")
	}

	if err := reward.normalize(ctx); err != nil {
		return nil, err
	}

	return &reward, nil
}

func (r *currencyReward) Type() entity.RewardType {
	return entity.CurrencyReward
}

func (r *currencyReward) Amount() int64 {
	return r.Value
}

func (r *currencyReward) Scale(multiplier float64) Reward {
	scaled := *r
	scaled.Value = scaleAmount(r.Value, multiplier)
	return &scaled
}

func (r *currencyReward) Data() entity.Map {
	return structs.Map(r)
}

func (r *currencyReward) Give(ctx context.Context, recipient Recipient) error {
	err := r.factory.currencyLedger.Grant(ctx, r.actorID(), recipient.UserID, recipient.GuildID,
		r.CurrencyID, r.Value, rewardReason(recipient))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot grant currency %s: %v", r.CurrencyID, err)
		return errorx.Wrap(errorx.UpdateFailed, err, "Cannot grant currency reward")
	}

	return nil
}

// XP Reward
type xpReward struct {
	Value int64 `mapstructure:"amount" structs:"amount"`

	factory Factory
}

func newXPReward(ctx context.Context, factory Factory, data map[string]any) (*xpReward, error) {
	reward := xpReward{factory: factory}
	if err := mapstructure.Decode(data, &reward); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode map to struct: %v", err)
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid xp reward")
	}

	if reward.Value < 1 {
		return nil, errorx.New(errorx.InvalidTemplate, "XP reward amount must be at least 1")
	}

	return &reward, nil
}

func (r *xpReward) Type() entity.RewardType {
	return entity.XPReward
}

func (r *xpReward) Amount() int64 {
	return r.Value
}

func (r *xpReward) Scale(multiplier float64) Reward {
	scaled := *r
	scaled.Value = scaleAmount(r.Value, multiplier)
	return &scaled
}

func (r *xpReward) Data() entity.Map {
	return structs.Map(r)
}

func (r *xpReward) Give(ctx context.Context, recipient Recipient) error {
	result, err := r.factory.xpLedger.AddXP(ctx, recipient.GuildID, recipient.UserID,
		QuestCompleteOperation, r.Value, recipient.CorrelationID, map[string]any{
			"quest_id":    recipient.QuestID,
			"rotation_id": recipient.RotationID,
		})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add xp: %v", err)
		return errorx.Wrap(errorx.UpdateFailed, err, "Cannot grant xp reward")
	}

	if result.AfterLevel > result.BeforeLevel {
		xcontext.Logger(ctx).Infof("User %s reached level %d in guild %s",
			recipient.UserID, result.AfterLevel, recipient.GuildID)
	}

	return nil
}

// Item Reward
type itemReward struct {
	ItemID string `mapstructure:"item_id" structs:"item_id"`
	Value  int64  `mapstructure:"quantity" structs:"quantity"`

	factory Factory
}

func newItemReward(ctx context.Context, factory Factory, data map[string]any) (*itemReward, error) {
	reward := itemReward{factory: factory}
	if err := mapstructure.Decode(data, &reward); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode map to struct: %v", err)
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid item reward")
	}

	if reward.ItemID == "" {
		return nil, errorx.New(errorx.InvalidTemplate, "Item reward needs an item id")
	}

	if reward.Value < 1 {
		return nil, errorx.New(errorx.InvalidTemplate, "Item reward quantity must be at least 1")
	}

	return &reward, nil
}

func (r *itemReward) Type() entity.RewardType {
	return entity.ItemReward
}

func (r *itemReward) Amount() int64 {
	return r.Value
}

func (r *itemReward) Scale(multiplier float64) Reward {
	scaled := *r
	scaled.Value = scaleAmount(r.Value, multiplier)
	return &scaled
}

func (r *itemReward) Data() entity.Map {
	return structs.Map(r)
}

func (r *itemReward) Give(ctx context.Context, recipient Recipient) error {
	err := r.factory.itemLedger.AdjustQuantity(ctx, systemActorID, recipient.UserID, recipient.GuildID,
		r.ItemID, r.Value, rewardReason(recipient))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust quantity of item %s: %v", r.ItemID, err)
		return errorx.Wrap(errorx.UpdateFailed, err, "Cannot grant item reward")
	}

	return nil
}

// Quest Token Reward
type questTokenReward struct {
	Value        int64 `mapstructure:"amount" structs:"amount"`
	RewardSource `mapstructure:",squash" structs:",flatten"`

	factory Factory
}

func newQuestTokenReward(ctx context.Context, factory Factory, data map[string]any) (*questTokenReward, error) {
	reward := questTokenReward{factory: factory}
	if err := mapstructure.Decode(data, &reward); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode map to struct: %v", err)
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid quest token reward")
	}

	if reward.Value < 1 {
		return nil, errorx.New(errorx.InvalidTemplate, "Quest token reward amount must be at least 1")
	}

	if err := reward.normalize(ctx); err != nil {
		return nil, err
	}

	return &reward, nil
}

func (r *questTokenReward) Type() entity.RewardType {
	return entity.QuestTokenReward
}

func (r *questTokenReward) Amount() int64 {
	return r.Value
}

func (r *questTokenReward) Scale(multiplier float64) Reward {
	scaled := *r
	scaled.Value = scaleAmount(r.Value, multiplier)
	return &scaled
}

func (r *questTokenReward) Data() entity.Map {
	return structs.Map(r)
}

func (r *questTokenReward) Give(ctx context.Context, recipient Recipient) error {
	err := r.factory.currencyLedger.Grant(ctx, r.actorID(), recipient.UserID, recipient.GuildID,
		QuestTokenCurrencyID, r.Value, rewardReason(recipient))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot grant quest token: %v", err)
		return errorx.Wrap(errorx.UpdateFailed, err, "Cannot grant quest token reward")
	}

	return nil
}
