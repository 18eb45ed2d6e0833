package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/questengine/pkg/kafka"
	"github.com/questx-lab/questengine/pkg/prometheus"
	"github.com/questx-lab/questengine/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher("questengine-subscriber")
	if err := s.loadLedgers(); err != nil {
		return err
	}
	defer s.closeLedgers()
	s.loadRepos()
	s.loadDomains()

	ctx, stop := signalContext(s.ctx)
	defer stop()

	metricsSrv := s.startMetrics()
	defer shutdown(s.ctx, metricsSrv)

	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID,
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.HookTopic},
		s.hookDomain.HandleHookEvent,
	)
	if err != nil {
		return err
	}
	defer subscriber.Stop(s.ctx)

	xcontext.Logger(s.ctx).Infof("Subscribing to %s", cfg.Kafka.HookTopic)
	subscriber.Subscribe(ctx)

	<-ctx.Done()
	xcontext.Logger(s.ctx).Infof("Subscriber stopped")
	return nil
}

func (s *srv) startMetrics() *http.Server {
	cfg := xcontext.Configs(s.ctx)
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewHandler())

	httpSrv := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		xcontext.Logger(s.ctx).Infof("Starting prometheus on %s", cfg.Metrics.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
		}
	}()

	return httpSrv
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func shutdown(ctx context.Context, httpSrv *http.Server) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot shutdown %s: %v", httpSrv.Addr, err)
	}
}
