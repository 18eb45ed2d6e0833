package engine

import (
	"context"

	"github.com/questx-lab/questengine/internal/domain"
	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/pkg/xcontext"
)

// EngineServer exposes the quest engine to the bot host over JSON-RPC. Method
// names follow go-ethereum rpc rules, e.g. questEngine_claimReward.
type EngineServer struct {
	// rootCtx carries the db, logger and configs of the process. Requests only
	// contribute their cancellation.
	rootCtx context.Context

	templateDomain domain.QuestTemplateDomain
	rotationDomain domain.QuestRotationDomain
	progressDomain domain.QuestProgressDomain
	claimDomain    domain.QuestClaimDomain
	hookDomain     domain.QuestHookDomain
}

func NewEngineServer(
	rootCtx context.Context,
	templateDomain domain.QuestTemplateDomain,
	rotationDomain domain.QuestRotationDomain,
	progressDomain domain.QuestProgressDomain,
	claimDomain domain.QuestClaimDomain,
	hookDomain domain.QuestHookDomain,
) *EngineServer {
	return &EngineServer{
		rootCtx:        rootCtx,
		templateDomain: templateDomain,
		rotationDomain: rotationDomain,
		progressDomain: progressDomain,
		claimDomain:    claimDomain,
		hookDomain:     hookDomain,
	}
}

func (s *EngineServer) CreateTemplate(
	ctx context.Context, actorID string, req *model.CreateQuestTemplateRequest,
) (*model.CreateQuestTemplateResponse, error) {
	return s.templateDomain.Create(xcontext.WithRequestUserID(s.context(ctx), actorID), req)
}

func (s *EngineServer) GetTemplate(
	ctx context.Context, req *model.GetQuestTemplateRequest,
) (*model.GetQuestTemplateResponse, error) {
	return s.templateDomain.Get(s.context(ctx), req)
}

func (s *EngineServer) ListTemplates(
	ctx context.Context, req *model.GetListQuestTemplateRequest,
) (*model.GetListQuestTemplateResponse, error) {
	return s.templateDomain.GetList(s.context(ctx), req)
}

func (s *EngineServer) UpdateTemplate(
	ctx context.Context, req *model.UpdateQuestTemplateRequest,
) (*model.UpdateQuestTemplateResponse, error) {
	return s.templateDomain.Update(s.context(ctx), req)
}

func (s *EngineServer) DeleteTemplate(
	ctx context.Context, req *model.DeleteQuestTemplateRequest,
) (*model.DeleteQuestTemplateResponse, error) {
	return s.templateDomain.Delete(s.context(ctx), req)
}

func (s *EngineServer) ImportTemplates(
	ctx context.Context, actorID string, req *model.ImportQuestTemplatesRequest,
) (*model.ImportQuestTemplatesResponse, error) {
	return s.templateDomain.Import(xcontext.WithRequestUserID(s.context(ctx), actorID), req)
}

// CurrentRotations ensures the rotations of the current windows exist before
// returning them, so the first /quests of a window generates it.
func (s *EngineServer) CurrentRotations(
	ctx context.Context, req *model.EnsureCurrentRotationsRequest,
) (*model.EnsureCurrentRotationsResponse, error) {
	return s.rotationDomain.EnsureCurrentRotations(s.context(ctx), req)
}

func (s *EngineServer) ActiveRotations(
	ctx context.Context, req *model.GetCurrentRotationsRequest,
) (*model.GetCurrentRotationsResponse, error) {
	return s.rotationDomain.GetCurrentRotations(s.context(ctx), req)
}

func (s *EngineServer) UserProgress(
	ctx context.Context, req *model.GetUserProgressRequest,
) (*model.GetUserProgressResponse, error) {
	return s.progressDomain.GetUserProgress(s.context(ctx), req)
}

func (s *EngineServer) ClaimReward(
	ctx context.Context, req *model.ClaimQuestRewardRequest,
) (*model.ClaimQuestRewardResponse, error) {
	return s.claimDomain.Claim(s.context(ctx), req)
}

func (s *EngineServer) TrackProgress(
	ctx context.Context, req *model.TrackProgressRequest,
) (*model.TrackProgressResponse, error) {
	return s.hookDomain.TrackProgress(s.context(ctx), req)
}

func (s *EngineServer) TrackQuest(
	ctx context.Context, req *model.TrackQuestRequest,
) (*model.TrackProgressResponse, error) {
	return s.hookDomain.TrackQuest(s.context(ctx), req)
}

func (s *EngineServer) context(reqCtx context.Context) context.Context {
	return &mergedContext{Context: reqCtx, values: s.rootCtx}
}

// mergedContext has the deadline and cancellation of the request and falls
// back to the root context for values.
type mergedContext struct {
	context.Context
	values context.Context
}

func (c *mergedContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.values.Value(key)
}
