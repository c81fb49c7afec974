package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/application/ingest"
	reportapp "github.com/creatorhub/backend/internal/application/report"
	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
	"github.com/creatorhub/backend/internal/domain/report"
	"github.com/creatorhub/backend/internal/interfaces/http/dto"
)

func TestCronHandler_Trigger(t *testing.T) {
	for path, job := range CronRoutes {
		t.Run(path, func(t *testing.T) {
			runner := new(MockJobRunner)
			rep := &ingest.RunReport{Job: job, Synced: 2, Results: []ingest.CreatorResult{}}
			runner.On("Run", mock.Anything, job).Return(rep, nil)

			router := setupTestRouter(internalRole)
			router.GET("/cron/"+path, NewCronHandler(runner).Trigger(job))

			w := get(router, "/cron/"+path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"job":"`+job+`"`)
			assert.Contains(t, w.Body.String(), `"synced":2`)
		})
	}
}

func TestCronHandler_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		rep        *ingest.RunReport
		err        error
		wantStatus int
	}{
		{"no creators", &ingest.RunReport{Job: ingest.JobMavelyGraphQLSync, Results: []ingest.CreatorResult{}}, ingest.ErrNoOwnedCreators, http.StatusOK},
		{"already running", nil, fmt.Errorf("%w: %s", ingest.ErrJobAlreadyRunning, ingest.JobLTKSync), http.StatusConflict},
		{"credentials missing", nil, integration.ErrCredentialsMissing, http.StatusBadGateway},
		{"failure", &ingest.RunReport{Job: ingest.JobLTKSync}, errors.New("airtable down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockJobRunner)
			runner.On("Run", mock.Anything, "job").Return(tt.rep, tt.err)

			router := setupTestRouter(internalRole)
			router.GET("/cron/job", NewCronHandler(runner).Trigger("job"))

			assert.Equal(t, tt.wantStatus, get(router, "/cron/job").Code)
		})
	}
}

type adminMocks struct {
	admin  *MockAdminOperations
	runner *MockJobRunner
	media  *MockMediaBackfiller
}

func setupAdminRouter() (http.Handler, adminMocks) {
	m := adminMocks{admin: new(MockAdminOperations), runner: new(MockJobRunner), media: new(MockMediaBackfiller)}
	h := NewAdminHandler(m.admin, m.runner, m.media)

	router := setupTestRouter(internalRole)
	router.GET("/admin/backfill", h.Backfill)
	router.GET("/admin/ig-backfill", h.IGBackfill)
	router.GET("/admin/set-creator-platform-ids", h.PlatformIDs)
	router.PATCH("/admin/set-creator-platform-ids", h.SetPlatformIDs)
	router.GET("/admin/shopmy-verify", h.VerifyShopMy)
	router.DELETE("/admin/shopmy-reset", h.ResetShopMy)
	return router, m
}

func TestAdminHandler_Backfill(t *testing.T) {
	router, m := setupAdminRouter()
	m.runner.On("Run", mock.Anything, ingest.JobAirtableBackfill).Return(&ingest.RunReport{Job: ingest.JobAirtableBackfill, Synced: 120}, nil)

	w := get(router, "/admin/backfill")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"synced":120`)
}

func TestAdminHandler_IGBackfill(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.runner.On("RunFunc", mock.Anything, ingest.JobIGBackfill).Return(nil)
		m.media.On("Backfill", mock.Anything, "alice", dto.DefaultIGBackfillLimit).Return(&ingest.RunReport{Job: ingest.JobIGBackfill, Synced: 1}, nil)

		w := get(router, "/admin/ig-backfill?creator=alice")
		require.Equal(t, http.StatusOK, w.Code)
		m.media.AssertExpectations(t)
	})

	t.Run("explicit limit", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.runner.On("RunFunc", mock.Anything, ingest.JobIGBackfill).Return(nil)
		m.media.On("Backfill", mock.Anything, "alice", 50).Return(&ingest.RunReport{Job: ingest.JobIGBackfill}, nil)

		assert.Equal(t, http.StatusOK, get(router, "/admin/ig-backfill?creator=alice&limit=50").Code)
	})

	t.Run("creator required", func(t *testing.T) {
		router, m := setupAdminRouter()
		assert.Equal(t, http.StatusBadRequest, get(router, "/admin/ig-backfill").Code)
		m.runner.AssertNotCalled(t, "RunFunc", mock.Anything, mock.Anything)
	})

	t.Run("unknown creator", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.runner.On("RunFunc", mock.Anything, ingest.JobIGBackfill).Return(nil)
		m.media.On("Backfill", mock.Anything, "ghost", dto.DefaultIGBackfillLimit).Return(&ingest.RunReport{}, creator.ErrCreatorNotFound)

		assert.Equal(t, http.StatusNotFound, get(router, "/admin/ig-backfill?creator=ghost").Code)
	})

	t.Run("no instagram account", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.runner.On("RunFunc", mock.Anything, ingest.JobIGBackfill).Return(nil)
		m.media.On("Backfill", mock.Anything, "bob", dto.DefaultIGBackfillLimit).Return(&ingest.RunReport{}, ingest.ErrNoIGUserID)

		assert.Equal(t, http.StatusBadRequest, get(router, "/admin/ig-backfill?creator=bob").Code)
	})

	t.Run("already running", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.runner.On("RunFunc", mock.Anything, ingest.JobIGBackfill).Return(ingest.ErrJobAlreadyRunning)

		assert.Equal(t, http.StatusConflict, get(router, "/admin/ig-backfill?creator=alice").Code)
		m.media.AssertNotCalled(t, "Backfill", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdminHandler_PlatformIDs(t *testing.T) {
	t.Run("list owned", func(t *testing.T) {
		router, m := setupAdminRouter()
		m.admin.On("OwnedPlatformIDs", mock.Anything).Return([]creator.Creator{{ID: "alice", IsOwned: true, LTKPublisherID: "293045"}}, nil)

		w := get(router, "/admin/set-creator-platform-ids")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ltkPublisherId":"293045"`)
	})

	t.Run("update", func(t *testing.T) {
		router, m := setupAdminRouter()
		shopmyID := "65244"
		m.admin.On("SetPlatformIDs", mock.Anything, "alice", creator.PlatformIDs{ShopMyUserID: &shopmyID}).
			Return(&creator.Creator{ID: "alice", ShopMyUserID: shopmyID}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/admin/set-creator-platform-ids",
			bytes.NewBufferString(`{"creatorId":"alice","shopmyUserId":"65244"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"shopmyUserId":"65244"`)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name       string
			body       string
			err        error
			wantStatus int
		}{
			{"malformed", `{"creatorId":`, nil, http.StatusBadRequest},
			{"missing creator", `{"ltkPublisherId":"1"}`, nil, http.StatusBadRequest},
			{"no ids", `{"creatorId":"alice"}`, creator.ErrNoPlatformIDs, http.StatusBadRequest},
			{"unknown creator", `{"creatorId":"ghost","ltkPublisherId":"1"}`, creator.ErrCreatorNotFound, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, m := setupAdminRouter()
				if tt.err != nil {
					m.admin.On("SetPlatformIDs", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
				}

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPatch, "/admin/set-creator-platform-ids", bytes.NewBufferString(tt.body))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, tt.wantStatus, w.Code)
			})
		}
	})
}

func TestAdminHandler_ShopMy(t *testing.T) {
	router, m := setupAdminRouter()
	m.admin.On("VerifyShopMy", mock.Anything, "alice").Return(report.ShopMyVerify{CreatorID: "alice"}, nil)
	m.admin.On("ResetShopMy", mock.Anything, "alice").Return(report.ShopMyReset{Cleared: earnings.ShopMyResetCounts{Sales: 4}}, nil)

	w := get(router, "/admin/shopmy-verify?creatorId=alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"creatorId":"alice"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/shopmy-reset?creatorId=alice", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared"`)

	assert.Equal(t, http.StatusBadRequest, get(router, "/admin/shopmy-verify").Code)
	m.admin.AssertExpectations(t)
}

func TestHandleError_CreatorIDRequired(t *testing.T) {
	router, m := setupAdminRouter()
	m.admin.On("VerifyShopMy", mock.Anything, " ").Return(report.ShopMyVerify{}, reportapp.ErrCreatorIDRequired)

	assert.Equal(t, http.StatusBadRequest, get(router, "/admin/shopmy-verify?creatorId=%20").Code)
}

func TestLTKProxyHandler_Forward(t *testing.T) {
	tokens := integration.LTKTokens{AccessToken: "access", IDToken: "id"}

	setup := func() (http.Handler, *MockLTKTokenSource, *MockLTKClient) {
		source := new(MockLTKTokenSource)
		client := new(MockLTKClient)
		h := NewLTKProxyHandler(source, client, 1<<20)
		router := setupTestRouter(internalRole)
		router.GET("/ltk/*path", h.Forward)
		router.POST("/ltk/*path", h.Forward)
		return router, source, client
	}

	t.Run("get passes through", func(t *testing.T) {
		router, source, client := setup()
		source.On("LTKTokens", mock.Anything).Return(tokens, nil)
		client.On("Proxy", mock.Anything, tokens, integration.ProxyRequest{
			Method:   http.MethodGet,
			Path:     "/api/creator-analytics/v1/performance_stats",
			RawQuery: "start_date=2025-01-01&publisher_ids=293045",
		}).Return(&integration.ProxyResponse{StatusCode: http.StatusTeapot, ContentType: "text/plain", Body: []byte("short and stout")}, nil)

		w := get(router, "/ltk/api/creator-analytics/v1/performance_stats?start_date=2025-01-01&publisher_ids=293045")
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
		assert.Equal(t, "short and stout", w.Body.String())
	})

	t.Run("post forwards body", func(t *testing.T) {
		router, source, client := setup()
		source.On("LTKTokens", mock.Anything).Return(tokens, nil)
		client.On("Proxy", mock.Anything, tokens, integration.ProxyRequest{
			Method:      http.MethodPost,
			Path:        "/api/items",
			Body:        []byte(`{"q":1}`),
			ContentType: "application/json",
		}).Return(&integration.ProxyResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"ok":true}`)}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ltk/api/items", bytes.NewBufferString(`{"q":1}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("token failure", func(t *testing.T) {
		router, source, client := setup()
		source.On("LTKTokens", mock.Anything).Return(integration.LTKTokens{}, integration.ErrCredentialsMissing)

		w := get(router, "/ltk/api/items")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		client.AssertNotCalled(t, "Proxy", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		router, source, client := setup()
		source.On("LTKTokens", mock.Anything).Return(tokens, nil)
		client.On("Proxy", mock.Anything, tokens, mock.Anything).Return(nil, integration.ErrPlatformUnavailable)

		w := get(router, "/ltk/api/items")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp, _ := decodeResponse(t, w)
		assert.False(t, resp.Success)
	})
}

func TestHealthHandler_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(nil)
		router := setupTestRouter(internalRole)
		router.GET("/health", NewHealthHandler(db).Check)

		w := get(router, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(errors.New("connection refused"))
		router := setupTestRouter(internalRole)
		router.GET("/health", NewHealthHandler(db).Check)

		w := get(router, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestMeHandler_Role(t *testing.T) {
	router := setupTestRouter(clientRole)
	router.GET("/me/role", NewMeHandler().Role)

	w := get(router, "/me/role")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"user_test","role":"client","assignedCreatorIds":["alice","bob"]}`, string(mustData(t, w)))
}
