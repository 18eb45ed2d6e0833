package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/questengine/internal/domain/questclaim"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/internal/repository"
	"github.com/questx-lab/questengine/pkg/enum"
	"github.com/questx-lab/questengine/pkg/errorx"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type QuestTemplateDomain interface {
	Create(context.Context, *model.CreateQuestTemplateRequest) (*model.CreateQuestTemplateResponse, error)
	Get(context.Context, *model.GetQuestTemplateRequest) (*model.GetQuestTemplateResponse, error)
	GetList(context.Context, *model.GetListQuestTemplateRequest) (*model.GetListQuestTemplateResponse, error)
	Update(context.Context, *model.UpdateQuestTemplateRequest) (*model.UpdateQuestTemplateResponse, error)
	Delete(context.Context, *model.DeleteQuestTemplateRequest) (*model.DeleteQuestTemplateResponse, error)
	Import(context.Context, *model.ImportQuestTemplatesRequest) (*model.ImportQuestTemplatesResponse, error)
}

type questTemplateDomain struct {
	templateRepo  repository.QuestTemplateRepository
	rotationRepo  repository.QuestRotationRepository
	rewardFactory questclaim.Factory
}

func NewQuestTemplateDomain(
	templateRepo repository.QuestTemplateRepository,
	rotationRepo repository.QuestRotationRepository,
	rewardFactory questclaim.Factory,
) *questTemplateDomain {
	return &questTemplateDomain{
		templateRepo:  templateRepo,
		rotationRepo:  rotationRepo,
		rewardFactory: rewardFactory,
	}
}

func (d *questTemplateDomain) Create(
	ctx context.Context, req *model.CreateQuestTemplateRequest,
) (*model.CreateQuestTemplateResponse, error) {
	template := newQuestTemplateEntity(ctx, req)
	if err := validateQuestTemplate(ctx, d.rewardFactory, template); err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	count, err := d.templateRepo.Count(ctx, template.GuildID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count quest templates: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot create quest")
	}

	if int(count) >= xcontext.Configs(ctx).Quest.MaxTemplatesPerGuild {
		return nil, errorx.New(errorx.CapacityExceeded, "Guild already has %d quest templates", count)
	}

	if err := d.templateRepo.Create(ctx, template); err != nil {
		if errorx.Is(err, errorx.DuplicateQuestID) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot create quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot create quest")
	}

	ctx, err = xcontext.WithCommitDBTransaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot create quest")
	}

	result := model.CreateQuestTemplateResponse(convertQuestTemplate(template))
	return &result, nil
}

func (d *questTemplateDomain) Get(
	ctx context.Context, req *model.GetQuestTemplateRequest,
) (*model.GetQuestTemplateResponse, error) {
	template, err := d.templateRepo.Get(ctx, req.GuildID, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotFound, "Not found quest %s", req.ID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get quest")
	}

	result := model.GetQuestTemplateResponse(convertQuestTemplate(template))
	return &result, nil
}

func (d *questTemplateDomain) GetList(
	ctx context.Context, req *model.GetListQuestTemplateRequest,
) (*model.GetListQuestTemplateResponse, error) {
	filter := repository.QuestTemplateFilter{
		Enabled:       req.Enabled,
		CanBeFeatured: req.CanBeFeatured,
	}

	if req.Category != "" {
		category, err := enum.ToEnum[entity.QuestCategory](req.Category)
		if err != nil {
			return nil, errorx.New(errorx.InvalidTemplate, "Invalid category %s", req.Category)
		}
		filter.Category = category
	}

	if req.Difficulty != "" {
		difficulty, err := enum.ToEnum[entity.QuestDifficulty](req.Difficulty)
		if err != nil {
			return nil, errorx.New(errorx.InvalidTemplate, "Invalid difficulty %s", req.Difficulty)
		}
		filter.Difficulty = difficulty
	}

	sort := repository.QuestTemplateSort{Field: repository.QuestTemplateSortField(req.SortBy), Desc: req.SortDesc}
	validSorts := []repository.QuestTemplateSortField{
		"", repository.SortByName, repository.SortByCreatedAt, repository.SortByDifficulty,
	}
	if !slices.Contains(validSorts, sort.Field) {
		return nil, errorx.New(errorx.InvalidTemplate, "Invalid sort field %s", req.SortBy)
	}

	templates, err := d.templateRepo.GetList(ctx, req.GuildID, filter, sort)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest templates: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot get quests")
	}

	result := []model.QuestTemplate{}
	for i := range templates {
		result = append(result, convertQuestTemplate(&templates[i]))
	}

	return &model.GetListQuestTemplateResponse{Templates: result}, nil
}

func (d *questTemplateDomain) Update(
	ctx context.Context, req *model.UpdateQuestTemplateRequest,
) (*model.UpdateQuestTemplateResponse, error) {
	template, err := d.templateRepo.Get(ctx, req.GuildID, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.QuestNotFound, "Not found quest %s", req.ID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot update quest")
	}

	patch := map[string]any{}
	if req.Name != nil {
		template.Name = *req.Name
		patch["name"] = template.Name
	}

	if req.Description != nil {
		template.Description = *req.Description
		patch["description"] = template.Description
	}

	if req.Category != nil {
		template.Category = entity.QuestCategory(*req.Category)
		patch["category"] = template.Category
	}

	if req.Difficulty != nil {
		template.Difficulty = entity.QuestDifficulty(*req.Difficulty)
		patch["difficulty"] = template.Difficulty
	}

	if req.Requirements != nil {
		// Progress counters are indexed by requirement, so they are frozen
		// while a rotation can still track the quest.
		rotation, err := d.activeRotationOf(ctx, req.GuildID, req.ID)
		if err != nil {
			return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot update quest")
		}

		if rotation != nil {
			return nil, errorx.New(errorx.UpdateFailed,
				"Quest %s is used by the active %s rotation, its requirements cannot change", req.ID, rotation.Type)
		}

		template.Requirements = convertEntityRequirements(req.Requirements)
	}

	if req.Rewards != nil {
		template.Rewards = convertEntityRewards(req.Rewards)
	}

	if req.CooldownHours != nil {
		template.CooldownHours = *req.CooldownHours
		patch["cooldown_hours"] = template.CooldownHours
	}

	if req.MaxCompletions != nil {
		template.MaxCompletions = *req.MaxCompletions
		patch["max_completions"] = template.MaxCompletions
	}

	if req.MinLevel != nil {
		template.MinLevel = *req.MinLevel
		patch["min_level"] = template.MinLevel
	}

	if req.CanBeFeatured != nil {
		template.CanBeFeatured = *req.CanBeFeatured
		patch["can_be_featured"] = template.CanBeFeatured
	}

	if req.FeaturedMultiplier != nil {
		template.FeaturedMultiplier = *req.FeaturedMultiplier
		patch["featured_multiplier"] = template.FeaturedMultiplier
	}

	if req.Enabled != nil {
		template.Enabled = *req.Enabled
		patch["enabled"] = template.Enabled
	}

	if err := validateQuestTemplate(ctx, d.rewardFactory, template); err != nil {
		return nil, err
	}

	// Requirements and rewards are written after validation normalized them.
	if req.Requirements != nil {
		patch["requirements"] = template.Requirements
	}

	if req.Rewards != nil {
		patch["rewards"] = template.Rewards
	}

	if len(patch) > 0 {
		err = d.templateRepo.Update(ctx, req.GuildID, req.ID, patch)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.QuestNotFound, "Not found quest %s", req.ID)
			}

			xcontext.Logger(ctx).Errorf("Cannot update quest template: %v", err)
			return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot update quest")
		}
	}

	updated, err := d.templateRepo.Get(ctx, req.GuildID, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get updated quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot update quest")
	}

	result := model.UpdateQuestTemplateResponse(convertQuestTemplate(updated))
	return &result, nil
}

func (d *questTemplateDomain) Delete(
	ctx context.Context, req *model.DeleteQuestTemplateRequest,
) (*model.DeleteQuestTemplateResponse, error) {
	rotation, err := d.activeRotationOf(ctx, req.GuildID, req.ID)
	if err != nil {
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot delete quest")
	}

	if rotation != nil {
		return nil, errorx.New(errorx.UpdateFailed,
			"Quest %s is used by the active %s rotation, disable it instead", req.ID, rotation.Type)
	}

	deleted, err := d.templateRepo.Delete(ctx, req.GuildID, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete quest template: %v", err)
		return nil, errorx.Wrap(errorx.UpdateFailed, err, "Cannot delete quest")
	}

	return &model.DeleteQuestTemplateResponse{Deleted: deleted}, nil
}

// activeRotationOf returns an active rotation of the guild containing the
// quest, or nil if there is none.
func (d *questTemplateDomain) activeRotationOf(
	ctx context.Context, guildID, questID string,
) (*entity.QuestRotation, error) {
	rotations, err := d.rotationRepo.GetActive(ctx, guildID, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active rotations: %v", err)
		return nil, err
	}

	for i := range rotations {
		if slices.Contains(rotations[i].QuestIDs, questID) {
			return &rotations[i], nil
		}
	}

	return nil, nil
}

// Import creates every valid template of a pack. Invalid or duplicated
// templates are reported as issues and do not stop the import.
func (d *questTemplateDomain) Import(
	ctx context.Context, req *model.ImportQuestTemplatesRequest,
) (*model.ImportQuestTemplatesResponse, error) {
	result := &model.ImportQuestTemplatesResponse{Created: []string{}, Issues: []model.ImportIssue{}}
	for i := range req.Templates {
		createReq := req.Templates[i]
		createReq.GuildID = req.GuildID

		_, err := d.Create(ctx, &createReq)
		if err != nil {
			var errx errorx.Error
			if !errors.As(err, &errx) || errx.Code == errorx.UpdateFailed {
				return nil, err
			}

			result.Issues = append(result.Issues, model.ImportIssue{
				ID:      createReq.ID,
				Code:    errx.Code.String(),
				Message: errx.Message,
			})

			if errx.Code == errorx.CapacityExceeded {
				break
			}

			continue
		}

		result.Created = append(result.Created, createReq.ID)
	}

	xcontext.Logger(ctx).Infof("Imported %d quest templates into guild %s with %d issues",
		len(result.Created), req.GuildID, len(result.Issues))

	return result, nil
}

func newQuestTemplateEntity(ctx context.Context, req *model.CreateQuestTemplateRequest) *entity.QuestTemplate {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	featuredMultiplier := req.FeaturedMultiplier
	if featuredMultiplier == 0 {
		featuredMultiplier = 1
	}

	maxCompletions := req.MaxCompletions
	if maxCompletions == 0 {
		maxCompletions = 1
	}

	return &entity.QuestTemplate{
		GuildID:            req.GuildID,
		ID:                 req.ID,
		Name:               req.Name,
		Description:        req.Description,
		Category:           entity.QuestCategory(req.Category),
		Difficulty:         entity.QuestDifficulty(req.Difficulty),
		Requirements:       convertEntityRequirements(req.Requirements),
		Rewards:            convertEntityRewards(req.Rewards),
		CooldownHours:      req.CooldownHours,
		MaxCompletions:     maxCompletions,
		MinLevel:           req.MinLevel,
		CanBeFeatured:      req.CanBeFeatured,
		FeaturedMultiplier: featuredMultiplier,
		Enabled:            enabled,
		CreatedBy:          xcontext.RequestUserID(ctx),
	}
}
