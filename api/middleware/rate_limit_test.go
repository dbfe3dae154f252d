package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/pkg/config"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (s *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func TestWriteRateLimitAllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewWriteRateLimitPolicy("write", config.WriteRateLimitConfig{Window: time.Minute, IPLimit: 2, UserLimit: 2})
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestWriteRateLimitIPLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewWriteRateLimitPolicy("write", config.WriteRateLimitConfig{Window: time.Minute, IPLimit: 2})
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("expected success before limit, got %d", rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
}

func TestWriteRateLimitUserLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewWriteRateLimitPolicy("write", config.WriteRateLimitConfig{Window: time.Minute, UserLimit: 1})
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	userID := uuid.NewString()
	otherID := uuid.NewString()

	send := func(uid, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/grn", nil)
		req.RemoteAddr = addr
		req = req.WithContext(WithUserID(req.Context(), uid))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(userID, "1.2.3.4:1111"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	// Different IP, same user: the user counter still trips.
	if code := send(userID, "5.6.7.8:2222"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same user, got %d", code)
	}
	if code := send(otherID, "5.6.7.8:2222"); code != http.StatusOK {
		t.Fatalf("expected other user to pass, got %d", code)
	}
}

func TestWriteRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewWriteRateLimitPolicy("write", config.WriteRateLimitConfig{})
	called := false
	handler := WriteRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected passthrough when policy disabled, got %d", rec.Code)
	}
}
