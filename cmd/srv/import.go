package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/questx-lab/questengine/internal/model"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startImport(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one pack file")
	}

	b, err := os.ReadFile(cctx.Args().First())
	if err != nil {
		return err
	}

	req := &model.ImportQuestTemplatesRequest{}
	if err := json.Unmarshal(b, req); err != nil {
		return fmt.Errorf("invalid pack file: %w", err)
	}

	if guildID := cctx.String("guild"); guildID != "" {
		req.GuildID = guildID
	}

	if req.GuildID == "" {
		return fmt.Errorf("the pack does not name a guild, use --guild")
	}

	s.loadDatabase()
	s.migrateDB()
	s.loadRepos()
	s.loadDomains()

	ctx := xcontext.WithRequestUserID(s.ctx, cctx.String("actor"))
	resp, err := s.templateDomain.Import(ctx, req)
	if err != nil {
		return err
	}

	for _, issue := range resp.Issues {
		xcontext.Logger(ctx).Warnf("Skipped %s: %s %s", issue.ID, issue.Code, issue.Message)
	}

	xcontext.Logger(ctx).Infof("Imported %d templates into guild %s", len(resp.Created), req.GuildID)
	return nil
}
