package main

import (
    "bytes"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/goccy/go-json"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "tsboost/internal/data"
    "tsboost/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

func trainedRouter(t *testing.T) *gin.Engine {
    t.Helper()
    gb := models.NewGradientBoosting()
    gb.Params.NumRounds = 15
    s := data.GenerateDayNight(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 14*24)
    require.NoError(t, gb.FitWithTimestamps(s))
    return newRouter(newServer(gb, "models/test.json", zap.NewNop()))
}

func do(t *testing.T, r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
    t.Helper()
    req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
    req.Header.Set("Content-Type", "application/json")
    for i := 0; i+1 < len(header); i += 2 { req.Header.Set(header[i], header[i+1]) }
    w := httptest.NewRecorder()
    r.ServeHTTP(w, req)
    return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
    t.Helper()
    var v T
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
    return v
}

func TestHealth(t *testing.T) {
    r := trainedRouter(t)
    w := do(t, r, http.MethodGet, "/health", "")
    require.Equal(t, http.StatusOK, w.Code)
    assert.JSONEq(t, `{"status":"ok","model_loaded":true}`, w.Body.String())
    assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

    w = do(t, r, http.MethodGet, "/health", "", "X-Request-ID", "abc-123")
    assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestPredictTimestamp(t *testing.T) {
    r := trainedRouter(t)
    night := time.Date(2024, time.February, 10, 21, 0, 0, 0, time.UTC)

    for _, body := range []string{
        `{"timestamp":"2024-02-10T21:00:00Z"}`,
        `{"timestamp":"2024-02-10T22:00:00+01:00"}`,
        `{"timestamp":` + jsonInt(night.UnixMilli()) + `}`,
    } {
        w := do(t, r, http.MethodPost, "/predict/timestamp", body)
        require.Equal(t, http.StatusOK, w.Code, w.Body.String())
        resp := decode[predictResp](t, w)
        assert.Greater(t, resp.Value, 0.5, body)
        assert.Zero(t, resp.SkippedTrees)
        require.NotNil(t, resp.Features)
        assert.True(t, resp.Features.IsNight)
        assert.Equal(t, 21, resp.Features.Hour)
        assert.Equal(t, "2024-02-10T21:00:00Z", resp.Timestamp)
    }

    w := do(t, r, http.MethodPost, "/predict/timestamp", `{"timestamp":"2024-02-10T11:00:00Z"}`)
    require.Equal(t, http.StatusOK, w.Code)
    assert.Less(t, decode[predictResp](t, w).Value, 0.5)
}

func jsonInt(v int64) string {
    raw, _ := json.Marshal(v)
    return string(raw)
}

func TestPredictTimestampInvalid(t *testing.T) {
    r := trainedRouter(t)
    for _, body := range []string{
        `{"timestamp":"next tuesday"}`,
        `{"timestamp":1.5}`,
        `{"timestamp":true}`,
        `{}`,
        `not json`,
    } {
        w := do(t, r, http.MethodPost, "/predict/timestamp", body)
        assert.Equal(t, http.StatusBadRequest, w.Code, body)
        assert.Contains(t, w.Body.String(), "error")
    }
}

func TestPredictFeatures(t *testing.T) {
    r := trainedRouter(t)
    w := do(t, r, http.MethodPost, "/predict", `{"features":[1]}`)
    require.Equal(t, http.StatusOK, w.Code)
    resp := decode[predictResp](t, w)
    assert.Equal(t, 15, resp.SkippedTrees)
    assert.Equal(t, "GradientBoosting", resp.Model)

    w = do(t, r, http.MethodPost, "/predict", `{"features":[]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch(t *testing.T) {
    r := trainedRouter(t)
    w := do(t, r, http.MethodPost, "/batch", `{"rows":[[1],[2]]}`)
    require.Equal(t, http.StatusOK, w.Code)
    out := decode[struct {
        Predictions []predictResp `json:"predictions"`
    }](t, w)
    assert.Len(t, out.Predictions, 2)

    w = do(t, r, http.MethodPost, "/batch", `{"rows":[]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchTimestamps(t *testing.T) {
    r := trainedRouter(t)
    w := do(t, r, http.MethodPost, "/batch/timestamps", `{"timestamps":["2024-03-01T03:00:00Z","2024-03-01 14:00"]}`)
    require.Equal(t, http.StatusOK, w.Code, w.Body.String())
    out := decode[struct {
        Values []float64 `json:"values"`
    }](t, w)
    require.Len(t, out.Values, 2)
    assert.Greater(t, out.Values[0], 0.5)
    assert.Less(t, out.Values[1], 0.5)

    w = do(t, r, http.MethodPost, "/batch/timestamps", `{"timestamps":["2024-03-01T03:00:00Z"],"custom":[[1],[2]]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)

    w = do(t, r, http.MethodPost, "/batch/timestamps", `{"timestamps":["2024-03-01T03:00:00Z","soon"]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
    assert.Contains(t, w.Body.String(), "timestamps[1]")
}

func TestModelAndImportance(t *testing.T) {
    r := trainedRouter(t)
    w := do(t, r, http.MethodGet, "/model", "")
    require.Equal(t, http.StatusOK, w.Code)
    info := decode[map[string]any](t, w)
    assert.Equal(t, float64(15), info["trees"])
    assert.Equal(t, float64(13), info["num_features"])

    w = do(t, r, http.MethodGet, "/importance", "")
    require.Equal(t, http.StatusOK, w.Code)
    imp := decode[struct {
        Importance []models.FeatureImportance `json:"importance"`
    }](t, w)
    require.Len(t, imp.Importance, 13)
    assert.Equal(t, "is_night", imp.Importance[0].Name)
}

func TestUntrainedModel(t *testing.T) {
    r := newRouter(newServer(models.NewGradientBoosting(), "", nil))
    w := do(t, r, http.MethodPost, "/predict/timestamp", `{"timestamp":"2024-02-10T21:00:00Z"}`)
    assert.Equal(t, http.StatusServiceUnavailable, w.Code)
    w = do(t, r, http.MethodGet, "/importance", "")
    assert.Equal(t, http.StatusServiceUnavailable, w.Code)
    w = do(t, r, http.MethodGet, "/health", "")
    assert.JSONEq(t, `{"status":"ok","model_loaded":false}`, w.Body.String())
}

func TestAPIKey(t *testing.T) {
    t.Setenv("API_KEY", "s3cret")
    r := trainedRouter(t)
    body := `{"timestamp":"2024-02-10T21:00:00Z"}`
    assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/predict/timestamp", body).Code)
    assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/predict/timestamp", body, "X-API-Key", "nope").Code)
    assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/predict/timestamp", body, "X-API-Key", "s3cret").Code)
    assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
    r := trainedRouter(t)
    do(t, r, http.MethodPost, "/predict", `{"features":[1]}`)
    w := do(t, r, http.MethodGet, "/metrics", "")
    require.Equal(t, http.StatusOK, w.Code)
    body := w.Body.String()
    assert.True(t, strings.Contains(body, `tsboost_predictions_total{endpoint="predict"}`))
    assert.Contains(t, body, "tsboost_skipped_trees_total")
    assert.Contains(t, body, `tsboost_http_requests_total{code="200",route="/predict"}`)
}
