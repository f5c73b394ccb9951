package domain

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockEventMessage(t *testing.T) {
	event := NewStockEvent(StockLevel{Product: "Laptop", CurrentStock: 5}, "id-1")

	assert.Equal(t, "Laptop", event.Product)
	assert.Equal(t, int64(5), event.CurrentStock)
	assert.Equal(t, "Product Laptop stock is low (5). Please reorder.", event.Message)
	assert.Equal(t, "id-1", event.CorrelationID)
}

func TestStockEventEncodeDecodeRoundTrip(t *testing.T) {
	events := []StockEvent{
		NewStockEvent(StockLevel{Product: "Laptop", CurrentStock: 5}, "0b0a4c9e-0000-4000-8000-000000000001"),
		NewStockEvent(StockLevel{Product: "Keyboard", CurrentStock: 0}, "k"),
		{Product: "Ünïcødé \"quoted\"", CurrentStock: 9, Message: "line\nbreak", CorrelationID: "x"},
	}
	for _, event := range events {
		payload, err := event.Encode()
		require.NoError(t, err)

		_, err = base64.StdEncoding.DecodeString(string(payload))
		require.NoError(t, err, "payload must be plain base64")

		decoded, err := DecodeStockEvent(payload)
		require.NoError(t, err)
		assert.Equal(t, event, decoded)
	}
}

func TestDecodeStockEventAcceptsRawJSON(t *testing.T) {
	decoded, err := DecodeStockEvent([]byte(` {"product":"Mouse","currentStock":2,"correlationId":"c"} `))
	require.NoError(t, err)
	assert.Equal(t, "Mouse", decoded.Product)
	assert.Equal(t, int64(2), decoded.CurrentStock)
	assert.Equal(t, "c", decoded.CorrelationID)
}

func TestDecodeStockEventMalformed(t *testing.T) {
	payloads := map[string][]byte{
		"empty":          nil,
		"not base64":     []byte("this is not json!"),
		"base64 garbage": []byte(base64.StdEncoding.EncodeToString([]byte("not json"))),
		"broken json":    []byte(`{"product":`),
		"wrong types":    []byte(`{"product":1,"currentStock":"many"}`),
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeStockEvent(payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecodeFailure))
		})
	}
}

func TestRecoverCorrelationID(t *testing.T) {
	wrapped := base64.StdEncoding.EncodeToString([]byte(`{"currentStock":"bad","correlationId":"abc"}`))

	assert.Equal(t, "abc", RecoverCorrelationID([]byte(wrapped)))
	assert.Equal(t, "abc", RecoverCorrelationID([]byte(`{"correlationId":"abc","product":[]}`)))
	assert.Empty(t, RecoverCorrelationID([]byte(`{"product":"x"}`)))
	assert.Empty(t, RecoverCorrelationID([]byte("garbage!")))
}

func TestOrderRequestFromEvent(t *testing.T) {
	event := NewStockEvent(StockLevel{Product: "Keyboard", CurrentStock: 8}, "corr")
	req := event.OrderRequest()

	assert.Equal(t, OrderRequest{Product: "Keyboard", Quantity: 8, CorrelationID: "corr"}, req)
}

func TestOrderRequestWithDefaults(t *testing.T) {
	assert.Equal(t, OrderRequest{
		Product:       DefaultOrderProduct,
		Quantity:      DefaultOrderQuantity,
		CorrelationID: DefaultOrderCorrelationID,
	}, OrderRequest{}.WithDefaults())

	full := OrderRequest{Product: "Laptop", Quantity: 3, CorrelationID: "id"}
	assert.Equal(t, full, full.WithDefaults())
}

func TestRemoteRejectionError(t *testing.T) {
	var err error = &RemoteRejectionError{StatusCode: 500, Body: "boom"}

	assert.True(t, errors.Is(err, ErrRemoteRejection))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")

	var rejection *RemoteRejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, 500, rejection.StatusCode)
}

func TestOutcomeSucceeded(t *testing.T) {
	assert.True(t, OutcomeConfirmed.Succeeded())
	for _, o := range []Outcome{OutcomeDecodeFailed, OutcomeConfigMissing, OutcomeRemoteRejected, OutcomeTransportFailed} {
		assert.False(t, o.Succeeded(), o)
	}
}
