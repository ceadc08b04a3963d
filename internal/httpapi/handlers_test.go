package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/victorhinojosa/voice-ivr-payment/internal/auth"
	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
	"github.com/victorhinojosa/voice-ivr-payment/internal/config"
	"github.com/victorhinojosa/voice-ivr-payment/internal/reporting"
)

func newTestHandlers(t *testing.T) (Handlers, *callstore.MemoryStore) {
	t.Helper()
	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	store := callstore.NewMemoryStore()
	return Handlers{
		Auth:         m,
		Store:        store,
		Reports:      reporting.NewService(store),
		DashboardKey: "dash-key",
	}, store
}

func newTestAPI(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/refresh", h.Refresh)
	r.GET("/v1/calls", h.ListCalls)
	r.GET("/v1/calls/:call_id", h.GetCall)
	r.GET("/v1/reports/summary", h.OutcomeSummary)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_IssuesPairForValidKey(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := newTestAPI(h)

	w := doJSON(r, http.MethodPost, "/v1/auth/login", `{"api_key":"dash-key"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["access_token"] == "" || resp["refresh_token"] == "" {
		t.Fatalf("expected token pair, got %v", resp)
	}
}

func TestLogin_RejectsWrongKey(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := newTestAPI(h)

	w := doJSON(r, http.MethodPost, "/v1/auth/login", `{"api_key":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRefresh_RoundTrip(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := newTestAPI(h)

	pair, err := h.Auth.IssuePair(time.Now(), "dashboard", "operator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := doJSON(r, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// An access token must not pass as a refresh token.
	w = doJSON(r, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+pair.AccessToken+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("access token accepted for refresh: %d", w.Code)
	}
}

func TestListCalls_ReturnsRecords(t *testing.T) {
	h, store := newTestHandlers(t)
	r := newTestAPI(h)

	_, err := store.Upsert(context.Background(), "CA1", callstore.Update{
		CallerPhone: "+15550001111",
		Status:      callstore.StatusConfirmed,
		Intent:      callstore.IntentWillingToPay,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(r, http.MethodGet, "/v1/calls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Calls []callstore.CallRecord `json:"calls"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Calls) != 1 || resp.Calls[0].CallID != "CA1" {
		t.Fatalf("unexpected calls: %+v", resp.Calls)
	}
}

func TestListCalls_EmptyStoreIsEmptyArray(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := newTestAPI(h)

	w := doJSON(r, http.MethodGet, "/v1/calls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"calls":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestGetCall_NotFound(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := newTestAPI(h)

	w := doJSON(r, http.MethodGet, "/v1/calls/CA404", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOutcomeSummary(t *testing.T) {
	h, store := newTestHandlers(t)
	r := newTestAPI(h)

	for _, id := range []string{"CA1", "CA2"} {
		if _, err := store.Upsert(context.Background(), id, callstore.Update{
			Status: callstore.StatusConfirmed,
			Intent: callstore.IntentWillingToPay,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	w := doJSON(r, http.MethodGet, "/v1/reports/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var out reporting.OutcomeSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalCalls != 2 || out.Confirmed != 2 || out.ConfirmationRate != 100 {
		t.Fatalf("unexpected summary: %+v", out)
	}
}
