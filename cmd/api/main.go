package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"
    "time"

    "go.uber.org/zap"

    "tsboost/internal/models"
    "tsboost/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    path := os.Getenv("MODEL_PATH")
    if path == "" { path = filepath.Join("models", "model.json") }
    gb, err := models.LoadFile(path, logger)
    if err != nil {
        logger.Warn("no model loaded, scoring endpoints answer 503", zap.String("path", path), zap.Error(err))
        gb = models.NewGradientBoosting()
        gb.SetLogger(logger)
    } else {
        logger.Info("model loaded", zap.String("path", path), zap.Int("trees", len(gb.Trees())),
            zap.Int("features", gb.NumFeatures()), zap.Stringer("params", gb.Params))
    }

    r := newRouter(newServer(gb, path, logger))

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    go func() {
        logger.Info("listening", zap.String("addr", srv.Addr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logger.Fatal("server failed", zap.Error(err))
        }
    }()
    <-ctx.Done()

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Error("shutdown", zap.Error(err))
    }
}
