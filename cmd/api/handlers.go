package main

import (
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/gin-gonic/gin/binding"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "tsboost/internal/features"
    "tsboost/internal/models"
)

// server holds the fitted model. The model is never mutated after load, so handlers
// share it without locking.
type server struct {
    model  *models.GradientBoosting
    path   string
    logger *zap.Logger
}

func newServer(gb *models.GradientBoosting, path string, logger *zap.Logger) *server {
    if logger == nil { logger = zap.NewNop() }
    modelTrees.Set(float64(len(gb.Trees())))
    return &server{model: gb, path: path, logger: logger}
}

func newRouter(s *server) *gin.Engine {
    // epoch milliseconds in untyped fields arrive as json.Number, not float64
    binding.EnableDecoderUseNumber = true

    r := gin.New()
    r.Use(gin.Recovery(), requestIDMiddleware, requestLogger(s.logger), metricsMiddleware)

    r.GET("/health", s.handleHealth)
    r.GET("/metrics", gin.WrapH(promhttp.Handler()))

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/predict", s.handlePredict)
    api.POST("/predict/timestamp", s.handlePredictTimestamp)
    api.POST("/batch", s.handleBatch)
    api.POST("/batch/timestamps", s.handleBatchTimestamps)
    api.GET("/model", s.handleModel)
    api.GET("/importance", s.handleImportance)
    return r
}

type predictReq struct {
    Features []float64 `json:"features" binding:"required,min=1"`
}

type timestampReq struct {
    Timestamp any       `json:"timestamp" binding:"required"`
    Custom    []float64 `json:"custom"`
}

type batchReq struct {
    Rows [][]float64 `json:"rows" binding:"required,min=1,max=10000,dive,min=1"`
}

type batchTimestampsReq struct {
    Timestamps []any       `json:"timestamps" binding:"required,min=1,max=10000,dive,required"`
    Custom     [][]float64 `json:"custom"`
}

type predictResp struct {
    Value        float64             `json:"value"`
    Raw          float64             `json:"raw"`
    SkippedTrees int                 `json:"skipped_trees"`
    Model        string              `json:"model,omitempty"`
    Timestamp    string              `json:"timestamp,omitempty"`
    Features     *features.Timestamp `json:"features,omitempty"`
}

// fail maps engine errors to HTTP statuses: bad input 400, no model 503, otherwise 500.
func (s *server) fail(c *gin.Context, err error) {
    status := http.StatusInternalServerError
    switch {
    case errors.Is(err, models.ErrInput), errors.Is(err, features.ErrInvalidTimestamp):
        status = http.StatusBadRequest
    case errors.Is(err, models.ErrUntrained):
        status = http.StatusServiceUnavailable
    }
    _ = c.Error(err)
    c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
}

func badRequest(c *gin.Context, err error) {
    c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
}

func (s *server) score(x []float64, endpoint string) (predictResp, error) {
    p, err := s.model.PredictWithDiagnostics(x)
    if err != nil { return predictResp{}, err }
    predictions.WithLabelValues(endpoint).Inc()
    if p.SkippedTrees > 0 { skippedTrees.Add(float64(p.SkippedTrees)) }
    return predictResp{Value: p.Value, Raw: p.Raw, SkippedTrees: p.SkippedTrees}, nil
}

func (s *server) handleHealth(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": len(s.model.Trees()) > 0})
}

func (s *server) handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.ShouldBindJSON(&req); err != nil { badRequest(c, err); return }
    resp, err := s.score(req.Features, "predict")
    if err != nil { s.fail(c, err); return }
    resp.Model = s.model.Name()
    c.JSON(http.StatusOK, resp)
}

func (s *server) handlePredictTimestamp(c *gin.Context) {
    var req timestampReq
    if err := c.ShouldBindJSON(&req); err != nil { badRequest(c, err); return }
    t, err := features.Resolve(req.Timestamp)
    if err != nil { s.fail(c, err); return }
    resp, err := s.score(features.Vectorize(t, req.Custom), "predict_timestamp")
    if err != nil { s.fail(c, err); return }
    ts := features.Extract(t)
    resp.Model = s.model.Name()
    resp.Timestamp = t.Format(time.RFC3339Nano)
    resp.Features = &ts
    c.JSON(http.StatusOK, resp)
}

func (s *server) handleBatch(c *gin.Context) {
    var req batchReq
    if err := c.ShouldBindJSON(&req); err != nil { badRequest(c, err); return }
    out := make([]predictResp, len(req.Rows))
    for i, row := range req.Rows {
        resp, err := s.score(row, "batch")
        if err != nil { s.fail(c, err); return }
        out[i] = resp
    }
    c.JSON(http.StatusOK, gin.H{"model": s.model.Name(), "predictions": out})
}

func (s *server) handleBatchTimestamps(c *gin.Context) {
    var req batchTimestampsReq
    if err := c.ShouldBindJSON(&req); err != nil { badRequest(c, err); return }
    ts := make([]time.Time, len(req.Timestamps))
    for i, v := range req.Timestamps {
        t, err := features.Resolve(v)
        if err != nil { s.fail(c, fmt.Errorf("timestamps[%d]: %w", i, err)); return }
        ts[i] = t
    }
    values, err := s.model.PredictBatchWithTimestamps(ts, req.Custom)
    if err != nil { s.fail(c, err); return }
    predictions.WithLabelValues("batch_timestamps").Add(float64(len(values)))
    c.JSON(http.StatusOK, gin.H{"model": s.model.Name(), "values": values})
}

func (s *server) handleModel(c *gin.Context) {
    gb := s.model
    c.JSON(http.StatusOK, gin.H{
        "name":             gb.Name(),
        "path":             s.path,
        "trees":            len(gb.Trees()),
        "base_score":       gb.BaseScore(),
        "num_features":     gb.NumFeatures(),
        "feature_names":    gb.FeatureNames(),
        "params":           gb.Params,
        "snapshot_version": models.SnapshotVersion,
    })
}

func (s *server) handleImportance(c *gin.Context) {
    if len(s.model.Trees()) == 0 { s.fail(c, models.ErrUntrained); return }
    c.JSON(http.StatusOK, gin.H{"importance": s.model.RankedImportance()})
}
