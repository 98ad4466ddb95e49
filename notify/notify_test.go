package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cr-imson-co/layer-updater/pipeline"
)

func TestDecorate(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelInfo, "λ crimsoncore build 42 started"},
		{LevelSuccess, ":white_check_mark: λ crimsoncore build 42 started"},
		{LevelError, ":rotating_light: λ crimsoncore build 42 started"},
	}
	for _, tt := range tests {
		got := decorate(Message{Level: tt.level, Text: "λ crimsoncore build 42 started"})
		if got != tt.want {
			t.Errorf("decorate(%s) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSlackSend(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	s, err := NewSlack(srv.URL)
	if err != nil {
		t.Fatalf("NewSlack() error: %v", err)
	}
	if err := s.Send(context.Background(), Message{Level: LevelSuccess, Text: "λ crimsoncore build succeeded"}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if received["text"] != ":white_check_mark: λ crimsoncore build succeeded" {
		t.Errorf("text = %q", received["text"])
	}
}

func TestSlackSend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no_service", http.StatusGone)
	}))
	defer srv.Close()

	s, _ := NewSlack(srv.URL)
	if err := s.Send(context.Background(), Message{Text: "x"}); err == nil {
		t.Error("Send() error = nil, want webhook status error")
	}
}

func TestNewSlack_RequiresWebhook(t *testing.T) {
	if _, err := NewSlack(""); err == nil {
		t.Error("NewSlack(\"\") error = nil, want error")
	}
}

func TestTelegramSend(t *testing.T) {
	var path string
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		io.WriteString(w, `{"ok": true}`)
	}))
	defer srv.Close()

	tg, err := NewTelegram("bot-token", "chat-1")
	if err != nil {
		t.Fatalf("NewTelegram() error: %v", err)
	}
	tg.apiBase = srv.URL

	if err := tg.Send(context.Background(), Message{Level: LevelError, Text: "λ! crimsoncore build failed"}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if path != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", path)
	}
	if received["chat_id"] != "chat-1" {
		t.Errorf("chat_id = %q", received["chat_id"])
	}
	if received["text"] != ":rotating_light: λ! crimsoncore build failed" {
		t.Errorf("text = %q", received["text"])
	}
}

func TestTelegramSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"ok": false, "description": "chat not found"}`)
	}))
	defer srv.Close()

	tg, _ := NewTelegram("bot-token", "chat-1")
	tg.apiBase = srv.URL
	err := tg.Send(context.Background(), Message{Text: "x"})
	if err == nil {
		t.Fatal("Send() error = nil, want API error")
	}
}

func TestNewTelegram_Validation(t *testing.T) {
	if _, err := NewTelegram("", "chat"); err == nil {
		t.Error("missing token accepted")
	}
	if _, err := NewTelegram("token", ""); err == nil {
		t.Error("missing chat ID accepted")
	}
}

type stubNotifier struct {
	name string
	err  error
	sent []Message
}

func (s *stubNotifier) Name() string { return s.name }
func (s *stubNotifier) Send(_ context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestBroadcast_BestEffort(t *testing.T) {
	ok := &stubNotifier{name: "slack"}
	broken := &stubNotifier{name: "telegram", err: errors.New("chat not found")}

	msg := Message{Level: LevelError, Text: "λ! crimsoncore build failed"}
	Broadcast(context.Background(), []Notifier{broken, ok}, msg, pipeline.NewJSONLogger(io.Discard, false))

	// A broken channel must not stop delivery to the rest.
	if len(ok.sent) != 1 || ok.sent[0] != msg {
		t.Errorf("working notifier got %v", ok.sent)
	}
	if len(broken.sent) != 1 {
		t.Errorf("broken notifier attempts = %d, want 1", len(broken.sent))
	}
}
