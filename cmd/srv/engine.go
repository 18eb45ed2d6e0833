package main

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/questengine/internal/domain/engine"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

const engineRPCName = "questEngine"

func (s *srv) startEngine(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher("questengine-engine")
	if err := s.loadLedgers(); err != nil {
		return err
	}
	defer s.closeLedgers()
	s.loadRepos()
	s.loadDomains()

	ctx, stop := signalContext(s.ctx)
	defer stop()

	engineServer := engine.NewEngineServer(
		s.ctx,
		s.templateDomain,
		s.rotationDomain,
		s.progressDomain,
		s.claimDomain,
		s.hookDomain,
	)

	rpcHandler := rpc.NewServer()
	defer rpcHandler.Stop()
	if err := rpcHandler.RegisterName(engineRPCName, engineServer); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot register engine server: %v", err)
		return err
	}

	metricsSrv := s.startMetrics()
	defer shutdown(s.ctx, metricsSrv)

	httpSrv := &http.Server{
		Handler: rpcHandler,
		Addr:    cfg.Engine.Addr,
	}

	go func() {
		<-ctx.Done()
		shutdown(s.ctx, httpSrv)
	}()

	xcontext.Logger(s.ctx).Infof("Starting rpc quest engine on %s", cfg.Engine.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		xcontext.Logger(s.ctx).Errorf("An error occurs when running rpc server: %v", err)
		return err
	}

	return nil
}
