package model

type EnsureCurrentRotationsRequest struct {
	GuildID string `json:"guild_id"`
}

type EnsureCurrentRotationsResponse struct {
	Rotations []QuestRotation `json:"rotations"`
}

type GetCurrentRotationsRequest struct {
	GuildID string `json:"guild_id"`
}

type GetCurrentRotationsResponse struct {
	Rotations []QuestRotation `json:"rotations"`
}
