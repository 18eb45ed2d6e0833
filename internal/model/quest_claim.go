package model

type ClaimQuestRewardRequest struct {
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id"`
	RotationID string `json:"rotation_id"`
	QuestID    string `json:"quest_id"`
}

type ClaimQuestRewardResponse struct {
	Rewards       []AppliedReward `json:"rewards"`
	CorrelationID string          `json:"correlation_id"`
	Featured      bool            `json:"featured"`
}
