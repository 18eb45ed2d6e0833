package model

type Requirement struct {
	Type   string         `json:"type"`
	Target int            `json:"target"`
	Data   map[string]any `json:"data"`
}

type Reward struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type QuestTemplate struct {
	GuildID            string        `json:"guild_id"`
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Difficulty         string        `json:"difficulty"`
	Requirements       []Requirement `json:"requirements"`
	Rewards            []Reward      `json:"rewards"`
	CooldownHours      int           `json:"cooldown_hours"`
	MaxCompletions     int           `json:"max_completions"`
	MinLevel           int           `json:"min_level"`
	CanBeFeatured      bool          `json:"can_be_featured"`
	FeaturedMultiplier float64       `json:"featured_multiplier"`
	Enabled            bool          `json:"enabled"`
	CreatedBy          string        `json:"created_by"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
}

type QuestRotation struct {
	ID              string   `json:"id"`
	GuildID         string   `json:"guild_id"`
	Type            string   `json:"type"`
	StartsAt        string   `json:"starts_at"`
	EndsAt          string   `json:"ends_at"`
	QuestIDs        []string `json:"quest_ids"`
	FeaturedQuestID string   `json:"featured_quest_id"`
	CreatedAt       string   `json:"created_at"`
}

type QuestProgress struct {
	UserID           string `json:"user_id"`
	GuildID          string `json:"guild_id"`
	RotationID       string `json:"rotation_id"`
	QuestID          string `json:"quest_id"`
	Counters         []int  `json:"counters"`
	Completed        bool   `json:"completed"`
	CompletedAt      string `json:"completed_at"`
	CompletionCount  int    `json:"completion_count"`
	RewardsClaimed   bool   `json:"rewards_claimed"`
	RewardsClaimedAt string `json:"rewards_claimed_at"`
}

type AppliedReward struct {
	Type   string         `json:"type"`
	Amount int64          `json:"amount"`
	Data   map[string]any `json:"data"`
}
