package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tycoon-game/server/internal/engine"
	"github.com/tycoon-game/server/internal/httpapi"
	"github.com/tycoon-game/server/internal/lobby"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	gameAddr := envOr("GAME_ADDR", ":6060")
	httpAddr := envOr("HTTP_ADDR", ":8080")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", gameAddr)
	if err != nil {
		sugar.Fatalw("listen failed", "addr", gameAddr, "err", err)
	}

	l := lobby.New(engine.StandardConfig(), sugar)

	srv := &http.Server{
		Addr:    httpAddr,
		Handler: httpapi.SetupRoutes(l, sugar),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Run(ctx) })
	g.Go(func() error { return l.Serve(ctx, ln) })
	g.Go(func() error {
		sugar.Infow("http listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("server exited", "err", err)
	}
	sugar.Infow("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
