package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"stock-reorder-service/app/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var order = domain.OrderRequest{Product: "Laptop", Quantity: 5, CorrelationID: "corr-1"}

func TestSubmitConfirmed(t *testing.T) {
	var got domain.OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.OrderResponse{
			Message:       "Order for Laptop received successfully!",
			CorrelationID: got.CorrelationID,
			Status:        domain.OrderStatusConfirmed,
		})
	}))
	defer srv.Close()

	resp, err := NewOrderClient(time.Second).Submit(context.Background(), order, srv.URL, "secret")
	require.NoError(t, err)

	assert.Equal(t, order, got)
	assert.Equal(t, domain.OrderStatusConfirmed, resp.Status)
	assert.Equal(t, "corr-1", resp.CorrelationID)
}

func TestSubmitRemoteRejection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Unauthorized. Invalid or missing API Key."}`},
		{"ok but not json", http.StatusOK, `<html>hi</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := NewOrderClient(time.Second).Submit(context.Background(), order, srv.URL, "secret")
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrRemoteRejection))

			var rejection *domain.RemoteRejectionError
			require.True(t, errors.As(err, &rejection))
			assert.Equal(t, tt.status, rejection.StatusCode)
			assert.Equal(t, tt.body, rejection.Body)
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOrderClient(time.Second).Submit(context.Background(), order, url, "secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransportFailure))
	assert.False(t, errors.Is(err, domain.ErrRemoteRejection))
}

func TestSubmitTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewOrderClient(50*time.Millisecond).Submit(context.Background(), order, srv.URL, "secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransportFailure))
}

func TestSubmitConfigurationError(t *testing.T) {
	client := NewOrderClient(time.Second)

	_, err := client.Submit(context.Background(), order, "", "secret")
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = client.Submit(context.Background(), order, "http://localhost", "")
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
