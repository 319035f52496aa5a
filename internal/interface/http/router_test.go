package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/auth"
	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/infra/config"
	"github.com/evelynko/skinsight/internal/infra/imagestore"
	"github.com/evelynko/skinsight/internal/infra/imaging"
	"github.com/evelynko/skinsight/internal/infra/ingredients"
	"github.com/evelynko/skinsight/internal/infra/profilerepo"
	"github.com/evelynko/skinsight/internal/infra/scanstore"
	"github.com/evelynko/skinsight/internal/infra/shelfrepo"
	"github.com/evelynko/skinsight/internal/infra/userrepo"
)

type stubClassifier struct {
	classifyErr error
	extractErr  error
	product     scan.ExtractedProduct
}

func (s *stubClassifier) Classify(context.Context, []byte, skin.Metrics) (scan.RemoteEstimate, error) {
	return scan.RemoteEstimate{}, s.classifyErr
}

func (s *stubClassifier) ExtractProduct(context.Context, []byte) (scan.ExtractedProduct, error) {
	if s.extractErr != nil {
		return scan.ExtractedProduct{}, s.extractErr
	}
	return s.product, nil
}

type testStack struct {
	server  *httptest.Server
	authSvc auth.Service
}

func newTestStack(t *testing.T, classifier scan.Classifier) *testStack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	decoder := imaging.NewDecoder()
	scanSvc := scan.NewService(
		scan.Config{MaxImageBytes: 8 << 20, CacheTTL: time.Hour, SimilarK: 5},
		classifier,
		profilerepo.NewMemoryRepository(),
		shelfrepo.NewMemoryRepository(),
		scanstore.NewMemoryStore(),
		imagestore.NewMemoryStore(),
		ingredients.NewDeterministicEmbedder(32),
		decoder,
		logger,
	)
	authSvc := auth.NewService(auth.Config{
		Secret:          "router-test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, userrepo.NewMemoryRepository(), scanSvc, logger)

	cfg := &config.Config{}
	cfg.HTTP.Address = ":0"
	handler := NewHandler(authSvc, scanSvc, decoder, logger)
	srv := NewRouter(cfg, handler, authSvc)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &testStack{server: ts, authSvc: authSvc}
}

func (s *testStack) register(t *testing.T, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"hunter2secret","displayName":"Router Tester"}`, email)
	resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	login := fmt.Sprintf(`{"email":%q,"password":"hunter2secret"}`, email)
	resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(login), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var out auth.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *testStack) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func facePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 182, G: 121, B: 92, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageJSON(t *testing.T, data []byte) string {
	t.Helper()
	return fmt.Sprintf(`{"image":%q}`, base64.StdEncoding.EncodeToString(data))
}

func decodeErrorBody(t *testing.T, body io.Reader) map[string]map[string]string {
	t.Helper()
	var out map[string]map[string]string
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestRouter_RegisterLoginMe(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{classifyErr: errors.New("unreachable")})
	token := stack.register(t, "me@example.com")

	resp := stack.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var view auth.UserView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, "me@example.com", view.Email)
	require.Equal(t, "Router Tester", view.DisplayName)
}

func TestRouter_GuardedRequiresToken(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{})

	resp := stack.do(t, http.MethodGet, "/api/v1/profile", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	defer resp.Body.Close()

	errBody := decodeErrorBody(t, resp.Body)
	require.Equal(t, "unauthorized", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_SessionLifecycleOffline(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{classifyErr: errors.New("model unreachable")})
	token := stack.register(t, "scanner@example.com")

	resp := stack.do(t, http.MethodPost, "/api/v1/scan/sessions", token, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEmpty(t, created.SessionID)

	frame := imageJSON(t, facePNG(t))
	resp = stack.do(t, http.MethodPost, "/api/v1/scan/sessions/"+created.SessionID+"/frames", token, strings.NewReader(frame), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var display struct {
		Guidance struct {
			Admissible bool `json:"admissible"`
		} `json:"guidance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&display))
	resp.Body.Close()
	require.True(t, display.Guidance.Admissible)

	resp = stack.do(t, http.MethodPost, "/api/v1/scan/sessions/"+created.SessionID+"/complete", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var analysis scan.Analysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analysis))
	require.True(t, analysis.Offline)
	require.Equal(t, "Offline Analysis", analysis.Summary)
	require.Equal(t, analysis.Local, analysis.Final)
}

func TestRouter_CancelSessionSkipsAnalysis(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{classifyErr: errors.New("must not be called")})
	token := stack.register(t, "cancel@example.com")

	resp := stack.do(t, http.MethodPost, "/api/v1/scan/sessions", token, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	resp = stack.do(t, http.MethodDelete, "/api/v1/scan/sessions/"+created.SessionID, token, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = stack.do(t, http.MethodPost, "/api/v1/scan/sessions/"+created.SessionID+"/complete", token, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_ProductScanOfflinePlaceholder(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{extractErr: errors.New("vision model down")})
	token := stack.register(t, "shelf@example.com")

	resp := stack.do(t, http.MethodPost, "/api/v1/products/scan", token, strings.NewReader(imageJSON(t, facePNG(t))), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	var product skin.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	require.Equal(t, "Offline Scan", product.Name)
	require.Equal(t, skin.TypeUnknown, product.Type)
	require.Equal(t, skin.NeutralScore, product.BaseScore)
}

func TestRouter_DecisionRejectsMissingName(t *testing.T) {
	stack := newTestStack(t, &stubClassifier{})
	token := stack.register(t, "decide@example.com")

	resp := stack.do(t, http.MethodPost, "/api/v1/products/decision", token, strings.NewReader(`{"type":"SERUM"}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	defer resp.Body.Close()

	errBody := decodeErrorBody(t, resp.Body)
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}
