package entity

import (
	"time"

	"github.com/questx-lab/questengine/pkg/enum"
)

type QuestCategory string

var (
	CategoryGeneral  = enum.New(QuestCategory("general"))
	CategoryEconomy  = enum.New(QuestCategory("economy"))
	CategorySocial   = enum.New(QuestCategory("social"))
	CategoryCrafting = enum.New(QuestCategory("crafting"))
	CategoryMinigame = enum.New(QuestCategory("minigame"))
	CategoryEvent    = enum.New(QuestCategory("event"))
)

type QuestDifficulty string

var (
	DifficultyEasy      = enum.New(QuestDifficulty("easy"))
	DifficultyMedium    = enum.New(QuestDifficulty("medium"))
	DifficultyHard      = enum.New(QuestDifficulty("hard"))
	DifficultyExpert    = enum.New(QuestDifficulty("expert"))
	DifficultyLegendary = enum.New(QuestDifficulty("legendary"))
)

type RequirementType string

var (
	RequirementDoCommand     = enum.New(RequirementType("do_command"))
	RequirementSpendCurrency = enum.New(RequirementType("spend_currency"))
	RequirementCraftItem     = enum.New(RequirementType("craft_item"))
	RequirementWinMinigame   = enum.New(RequirementType("win_minigame"))
	RequirementCastVote      = enum.New(RequirementType("cast_vote"))
)

type RewardType string

var (
	CurrencyReward   = enum.New(RewardType("currency"))
	XPReward         = enum.New(RewardType("xp"))
	ItemReward       = enum.New(RewardType("item"))
	QuestTokenReward = enum.New(RewardType("quest_token"))
)

type Requirement struct {
	Type   RequirementType `json:"type"`
	Target int             `json:"target"`
	Data   Map             `json:"data"`
}

type Reward struct {
	Type RewardType `json:"type"`
	Data Map        `json:"data"`
}

type QuestTemplate struct {
	GuildID string `gorm:"primaryKey;size:64"`
	ID      string `gorm:"primaryKey;size:64"`

	Name         string
	Description  string
	Category     QuestCategory   `gorm:"size:32"`
	Difficulty   QuestDifficulty `gorm:"size:32"`
	Requirements Array[Requirement]
	Rewards      Array[Reward]

	CooldownHours  int
	MaxCompletions int
	// MinLevel is zero when the quest has no level requirement.
	MinLevel int

	CanBeFeatured      bool
	FeaturedMultiplier float64
	Enabled            bool

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
