package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type dispatched struct {
	userID int64
	text   string
}

func newTestGateway(dispatchErr error) (*Gateway, *[]dispatched) {
	var got []dispatched
	gateway := NewGateway(func(_ context.Context, userID int64, text string) error {
		if dispatchErr != nil {
			return dispatchErr
		}
		got = append(got, dispatched{userID: userID, text: text})
		return nil
	}, []int64{7}, discardLogger())
	return gateway, &got
}

func postMessage(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGatewayDispatchesAllowedUser(t *testing.T) {
	gateway, got := newTestGateway(nil)
	rec := postMessage(t, gateway.Handler(), `{"user_id": 7, "text": "hello"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, *got, 1)
	assert.Equal(t, dispatched{userID: 7, text: "hello"}, (*got)[0])
}

func TestGatewayRejectsUnlistedUser(t *testing.T) {
	gateway, got := newTestGateway(nil)
	rec := postMessage(t, gateway.Handler(), `{"user_id": 8, "text": "hello"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, *got)
}

func TestGatewayRejectsBadRequests(t *testing.T) {
	gateway, _ := newTestGateway(nil)
	handler := gateway.Handler()

	assert.Equal(t, http.StatusBadRequest, postMessage(t, handler, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postMessage(t, handler, `{"user_id": 7, "text": ""}`).Code)
}

func TestGatewayReportsDispatchFailure(t *testing.T) {
	gateway, _ := newTestGateway(errors.New("session is closed"))
	rec := postMessage(t, gateway.Handler(), `{"user_id": 7, "text": "hello"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGatewayOutboxDrain(t *testing.T) {
	gateway, _ := newTestGateway(nil)
	handler := gateway.Handler()
	ctx := context.Background()

	require.NoError(t, gateway.SendText(ctx, 7, "first"))
	require.NoError(t, gateway.SendText(ctx, 7, "second"))

	get := func() outboundMessages {
		req := httptest.NewRequest(http.MethodGet, "/v1/messages/7", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var out outboundMessages
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	assert.Equal(t, []string{"first", "second"}, get().Messages)
	// Drained: a second poll is empty.
	assert.Empty(t, get().Messages)
}

func TestGatewayOutboxAccessControl(t *testing.T) {
	gateway, _ := newTestGateway(nil)
	handler := gateway.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/messages/8", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/messages/abc", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
