package model

// HookEvent is the message consumed from the hook topic.
type HookEvent struct {
	EventID         string         `json:"event_id"`
	GuildID         string         `json:"guild_id"`
	UserID          string         `json:"user_id"`
	RequirementType string         `json:"requirement_type"`
	Metadata        map[string]any `json:"metadata"`
}

type TrackProgressRequest struct {
	UserID          string         `json:"user_id"`
	GuildID         string         `json:"guild_id"`
	RequirementType string         `json:"requirement_type"`
	Metadata        map[string]any `json:"metadata"`
}

// TrackQuestRequest applies an event to a single quest of a rotation.
type TrackQuestRequest struct {
	UserID          string         `json:"user_id"`
	GuildID         string         `json:"guild_id"`
	RotationID      string         `json:"rotation_id"`
	QuestID         string         `json:"quest_id"`
	RequirementType string         `json:"requirement_type"`
	Metadata        map[string]any `json:"metadata"`
}

type TrackProgressResponse struct {
	Progress []QuestProgress `json:"progress"`
}

// QuestCompletedEvent is published when a hook completes a quest.
type QuestCompletedEvent struct {
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id"`
	RotationID string `json:"rotation_id"`
	QuestID    string `json:"quest_id"`
}
