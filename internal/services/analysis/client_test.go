package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

func testRequest() *interfaces.AnalyzeRequest {
	return &interfaces.AnalyzeRequest{
		ScanID:    "scan-1",
		HouseType: "apartment",
		Rooms: []interfaces.RoomPayload{
			{RoomID: "room-1", RoomType: "kitchen", Photos: []string{"https://photos/1.jpg"}},
		},
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req interfaces.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "scan-1", req.ScanID)

		json.NewEncoder(w).Encode(interfaces.AnalyzeResponse{
			ScanID:  req.ScanID,
			Summary: "all good",
			Rooms: []interfaces.RoomAnalysis{
				{RoomID: "room-1", Findings: []models.Finding{{ItemID: "sink", Answer: "yes", Confidence: 0.9}}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")

	resp, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "scan-1", resp.ScanID)
	assert.Equal(t, "all good", resp.Summary)
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "sink", resp.Rooms[0].Findings[0].ItemID)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestAnalyzeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(interfaces.AnalyzeResponse{ScanID: "scan-1", Summary: "recovered"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "",
		WithRetries(3, 10*time.Millisecond),
		WithRateLimit(100),
	)

	resp, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Summary)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAnalyzeExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "",
		WithRetries(2, 10*time.Millisecond),
		WithRateLimit(100),
	)

	_, err := client.Analyze(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnalyzeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "",
		WithRetries(3, 10*time.Millisecond),
		WithRateLimit(100),
	)

	_, err := client.Analyze(context.Background(), testRequest())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, apiErr.Retryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnalyzeRetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(interfaces.AnalyzeResponse{ScanID: "scan-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "",
		WithRetries(2, 10*time.Millisecond),
		WithRateLimit(100),
	)

	resp, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "scan-1", resp.ScanID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnalyzeContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "",
		WithRetries(3, time.Second),
		WithRateLimit(100),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Analyze(ctx, testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
