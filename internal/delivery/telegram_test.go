package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSender_Send(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN123/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	s := NewTelegramSender(srv.URL+"/", "TOKEN123")
	err := s.Send(context.Background(), 4242, "‼️🚀 Балістика · 🟠 МІСТО")

	require.NoError(t, err)
	assert.Equal(t, int64(4242), got.ChatID)
	assert.Equal(t, "‼️🚀 Балістика · 🟠 МІСТО", got.Text)
	assert.True(t, got.DisableWebPagePreview)
}

func TestTelegramSender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusForbidden, `{"ok":false,"description":"Forbidden: bot was blocked by the user"}`, "403"},
		{"api rejection", http.StatusOK, `{"ok":false,"description":"Bad Request: chat not found"}`, "chat not found"},
		{"garbage", http.StatusOK, `not json`, "error decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewTelegramSender(srv.URL, "TOKEN123").Send(context.Background(), 1, "text")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTelegramSender_RedactsToken(t *testing.T) {
	s := NewTelegramSender("http://127.0.0.1:1", "SECRET-TOKEN")

	err := s.Send(context.Background(), 1, "text")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
}

func TestTelegramSender_DefaultURL(t *testing.T) {
	s := NewTelegramSender("", "t")
	assert.Equal(t, DefaultTelegramURL, s.baseURL)
}

func TestLogSender(t *testing.T) {
	var s Sender = LogSender{}
	assert.NoError(t, s.Send(context.Background(), 1, "text"))
}
