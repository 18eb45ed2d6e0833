package model

type CreateQuestTemplateRequest struct {
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

	// Enabled defaults to true.
	Enabled *bool `json:"enabled"`
}

type CreateQuestTemplateResponse QuestTemplate

type GetQuestTemplateRequest struct {
	GuildID string `json:"guild_id"`
	ID      string `json:"id"`
}

type GetQuestTemplateResponse QuestTemplate

type GetListQuestTemplateRequest struct {
	GuildID string `json:"guild_id"`

	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	Enabled       *bool  `json:"enabled"`
	CanBeFeatured *bool  `json:"can_be_featured"`

	// SortBy is one of name, created_at or difficulty.
	SortBy   string `json:"sort_by"`
	SortDesc bool   `json:"sort_desc"`
}

type GetListQuestTemplateResponse struct {
	Templates []QuestTemplate `json:"templates"`
}

type UpdateQuestTemplateRequest struct {
	GuildID string `json:"guild_id"`
	ID      string `json:"id"`

	Name               *string       `json:"name"`
	Description        *string       `json:"description"`
	Category           *string       `json:"category"`
	Difficulty         *string       `json:"difficulty"`
	Requirements       []Requirement `json:"requirements"`
	Rewards            []Reward      `json:"rewards"`
	CooldownHours      *int          `json:"cooldown_hours"`
	MaxCompletions     *int          `json:"max_completions"`
	MinLevel           *int          `json:"min_level"`
	CanBeFeatured      *bool         `json:"can_be_featured"`
	FeaturedMultiplier *float64      `json:"featured_multiplier"`
	Enabled            *bool         `json:"enabled"`
}

type UpdateQuestTemplateResponse QuestTemplate

type DeleteQuestTemplateRequest struct {
	GuildID string `json:"guild_id"`
	ID      string `json:"id"`
}

type DeleteQuestTemplateResponse struct {
	Deleted bool `json:"deleted"`
}

type ImportQuestTemplatesRequest struct {
	GuildID   string                       `json:"guild_id"`
	Templates []CreateQuestTemplateRequest `json:"templates"`
}

type ImportIssue struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ImportQuestTemplatesResponse struct {
	Created []string      `json:"created"`
	Issues  []ImportIssue `json:"issues"`
}
