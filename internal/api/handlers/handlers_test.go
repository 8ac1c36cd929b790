package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/analysis"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/middleware"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result *blotter.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) AnalyzeBlotter(_ context.Context, _ *analysis.AnalyzeRequest) (*blotter.AnalysisResult, error) {
	return f.result, f.err
}

type fakeChatter struct {
	response *analysis.ChatResponse
	err      error
}

func (f *fakeChatter) Chat(_ context.Context, _ *analysis.ChatRequest) (*analysis.ChatResponse, error) {
	return f.response, f.err
}

type fakeFetcher struct{}

func (fakeFetcher) GetLatest(_ context.Context, _ string) (*blotter.CloudRecord, error) {
	return nil, nil
}

func sampleAnalysis() *blotter.AnalysisResult {
	return &blotter.AnalysisResult{
		PortfolioSummary: blotter.PortfolioSummary{
			TotalTrades: 4,
			BuyTrades:   3,
			SellTrades:  1,
			PnL:         1250.5,
		},
	}
}

type testEnv struct {
	sessions  *services.SessionManager
	selection *services.AssetSelectionStore
	auth      *middleware.AuthMiddleware
}

func setupTestRouter(t *testing.T, analyzer services.Analyzer, chatter services.Chatter) (*gin.Engine, *testEnv, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	snapshots := blotter.NewSnapshotStore(client, time.Hour)
	contents := blotter.NewContentCache(client, time.Hour)
	sessions := services.NewSessionManager(services.NewReconciler(fakeFetcher{}), snapshots, contents, chatter, 10*1024*1024)
	orchestrator := services.NewUploadOrchestrator(analyzer, nil, contents, 50*1024*1024)
	selection := services.NewAssetSelectionStore(client)
	auth := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireAuth())
	{
		sessionHandler := NewSessionHandler(sessions)
		v1.POST("/session/signin", sessionHandler.SignIn)
		v1.POST("/session/signout", sessionHandler.SignOut)

		blotterHandler := NewBlotterHandler(sessions, orchestrator)
		v1.GET("/blotter", blotterHandler.GetState)
		v1.POST("/blotter/upload", blotterHandler.Upload)
		v1.POST("/blotter/select", blotterHandler.Select)
		v1.DELETE("/blotter/files/:name", blotterHandler.Remove)
		v1.GET("/blotter/analysis/:name", blotterHandler.GetAnalysis)

		chatHandler := NewChatHandler(sessions)
		v1.POST("/chat", chatHandler.Send)
		v1.GET("/chat/history", chatHandler.History)
		v1.DELETE("/chat/history", chatHandler.Clear)

		assetsHandler := NewAssetsHandler(selection)
		v1.GET("/assets", assetsHandler.List)
		v1.GET("/assets/selection", assetsHandler.GetSelection)
		v1.PUT("/assets/selection", assetsHandler.SetSelection)
		v1.POST("/assets/selection/toggle", assetsHandler.ToggleSelection)
		v1.POST("/assets/selection/reset", assetsHandler.ResetSelection)
	}

	token, err := auth.GenerateToken("user-1", "trader@example.com", time.Hour)
	require.NoError(t, err)

	return router, &testEnv{sessions: sessions, selection: selection, auth: auth}, token
}

func authedRequest(t *testing.T, method, path, token string, body []byte, contentType string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func multipartFile(t *testing.T, fieldName, fileName string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func TestBlotterHandler_Upload(t *testing.T) {
	t.Run("successful upload returns analysis and state", func(t *testing.T) {
		router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

		body, contentType := multipartFile(t, "file", "trades.csv", []byte("date,symbol\n"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/upload", token, body, contentType))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Analysis *blotter.AnalysisResult `json:"analysis"`
			Blotter  blotter.State           `json:"blotter"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Analysis)
		assert.Equal(t, 4, resp.Analysis.PortfolioSummary.TotalTrades)
		require.Len(t, resp.Blotter.Files, 1)
		assert.Equal(t, "trades.csv", resp.Blotter.Files[0].Name)
		assert.Equal(t, blotter.StatusSucceeded, resp.Blotter.Files[0].Status)
	})

	t.Run("unsupported extension rejected", func(t *testing.T) {
		router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

		body, contentType := multipartFile(t, "file", "notes.txt", []byte("hello"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/upload", token, body, contentType))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid file type")
	})

	t.Run("missing file rejected", func(t *testing.T) {
		router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/upload", token, nil, "multipart/form-data"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		router, _, _ := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

		body, contentType := multipartFile(t, "file", "trades.csv", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blotter/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBlotterHandler_SelectAndRemove(t *testing.T) {
	router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

	for _, name := range []string{"a.csv", "b.csv"} {
		body, contentType := multipartFile(t, "file", name, []byte("data\n"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/upload", token, body, contentType))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Select back to the first file.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/select", token,
		[]byte(`{"fileName": "a.csv"}`), "application/json"))
	require.Equal(t, http.StatusOK, w.Code)
	var state blotter.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.SelectedFile)
	assert.Equal(t, "a.csv", state.SelectedFile.Name)

	// Removing the selected file leaves no selection.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodDelete, "/api/v1/blotter/files/a.csv", token, nil, ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Nil(t, state.SelectedFile)
	require.Len(t, state.Files, 1)
	assert.Equal(t, "b.csv", state.Files[0].Name)
}

func TestBlotterHandler_GetAnalysis(t *testing.T) {
	router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

	body, contentType := multipartFile(t, "file", "trades.csv", []byte("data\n"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/blotter/upload", token, body, contentType))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/blotter/analysis/trades.csv", token, nil, ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/blotter/analysis/unknown.csv", token, nil, ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_SignInAndOut(t *testing.T) {
	router, _, token := setupTestRouter(t, &fakeAnalyzer{result: sampleAnalysis()}, &fakeChatter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/session/signin", token, nil, ""))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		UserID  string        `json:"userId"`
		Blotter blotter.State `json:"blotter"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.UserID)
	assert.True(t, resp.Blotter.HasHydratedFromCloud)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/session/signout", token, nil, ""))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatHandler_Send(t *testing.T) {
	t.Run("returns reply and history", func(t *testing.T) {
		chatter := &fakeChatter{response: &analysis.ChatResponse{FulfillmentText: "Your book looks fine."}}
		router, _, token := setupTestRouter(t, &fakeAnalyzer{}, chatter)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/chat", token,
			[]byte(`{"message": "how is my book?"}`), "application/json"))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Reply   services.ChatMessage   `json:"reply"`
			History []services.ChatMessage `json:"history"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Your book looks fine.", resp.Reply.Content)
		assert.Len(t, resp.History, 2)
	})

	t.Run("pipeline failure still returns conversation", func(t *testing.T) {
		chatter := &fakeChatter{err: assert.AnError}
		router, _, token := setupTestRouter(t, &fakeAnalyzer{}, chatter)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/chat", token,
			[]byte(`{"message": "hello"}`), "application/json"))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Error:")
	})

	t.Run("clear empties history", func(t *testing.T) {
		chatter := &fakeChatter{response: &analysis.ChatResponse{FulfillmentText: "ok"}}
		router, _, token := setupTestRouter(t, &fakeAnalyzer{}, chatter)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/chat", token,
			[]byte(`{"message": "hello"}`), "application/json"))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodDelete, "/api/v1/chat/history", token, nil, ""))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/chat/history", token, nil, ""))
		var resp struct {
			History []services.ChatMessage `json:"history"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.History)
	})
}

func TestAssetsHandler(t *testing.T) {
	router, _, token := setupTestRouter(t, &fakeAnalyzer{}, &fakeChatter{})

	t.Run("list returns catalog", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/assets", token, nil, ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "us-10yr")
		assert.Contains(t, w.Body.String(), "Sovereign Bonds")
	})

	t.Run("selection lifecycle", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPut, "/api/v1/assets/selection", token,
			[]byte(`{"selected": ["gold", "us-10yr"]}`), "application/json"))
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Selected []string `json:"selected"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"us-10yr", "gold"}, resp.Selected)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/assets/selection/toggle", token,
			[]byte(`{"assetId": "gold"}`), "application/json"))
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"us-10yr"}, resp.Selected)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/assets/selection/reset", token, nil, ""))
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Selected)
	})
}
