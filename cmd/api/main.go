package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tawfi332/Fsociety-T/backend/internal/config"
	"github.com/tawfi332/Fsociety-T/backend/internal/handler"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
	"github.com/tawfi332/Fsociety-T/backend/internal/observe"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/mentor"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/transcript"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/turn"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.Mentor.Enabled() {
		log.Fatalf("mentor provider %q is missing credentials - 请检查 ARK_* 或 OPENAI_* 环境变量", cfg.Mentor.Provider)
	}

	topics := topic.NewMemoryStore(topic.Seed())
	activeTopic, found := topic.Resolve(topics, cfg.Mentor.Topic)
	if !found {
		log.Printf("warning: unknown topic %q, falling back to %q", cfg.Mentor.Topic, activeTopic.ID)
	}

	client, err := mentor.New(ctx, cfg.Mentor, activeTopic)
	if err != nil {
		log.Fatalf("failed to initialize mentor client: %v", err)
	}
	log.Printf("mentor client initialized, provider=%s, topic=%s", cfg.Mentor.Provider, activeTopic.ID)

	metrics := observe.Noop()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		provider, err := observe.InitProvider()
		if err != nil {
			log.Fatalf("failed to initialize metrics: %v", err)
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				log.Printf("warning: metrics shutdown: %v", err)
			}
		}()
		if metrics, err = observe.NewMetrics(provider.MeterProvider); err != nil {
			log.Fatalf("failed to create instruments: %v", err)
		}
		metricsHandler = provider.Handler
		log.Println("metrics exported on /metrics")
	} else {
		log.Println("metrics disabled by configuration")
	}

	controller := turn.New(transcript.New(), client,
		turn.WithMetrics(metrics),
		turn.WithTimeout(cfg.Mentor.Timeout),
	)

	router := handler.NewRouter(controller, topics, activeTopic.ID, metricsHandler)

	startServer(ctx, cfg.Server, router, controller)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, controller *turn.Controller) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Fsociety-Speaker backend listening on %s", addr)
	if err := runServer(ctx, srv, controller); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runServer 运行服务直到 ctx 结束，随后在同一期限内关闭服务并等待进行中的轮次完成。
func runServer(ctx context.Context, srv *http.Server, controller *turn.Controller) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := controller.Wait(shutdownCtx); err != nil {
			log.Printf("warning: pending turn did not resolve before shutdown: %v", err)
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
