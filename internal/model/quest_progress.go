package model

type GetUserProgressRequest struct {
	UserID     string `json:"user_id"`
	RotationID string `json:"rotation_id"`
}

type GetUserProgressResponse struct {
	Progress []QuestProgress `json:"progress"`
}
