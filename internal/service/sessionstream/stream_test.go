package sessionstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/service/session"
	"StockDash/pkg/cache"
	applogger "StockDash/pkg/logger"

	"github.com/gorilla/websocket"
)

func TestStreamForwardsLoginAndLogout(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	mgr := session.NewManager(mc)
	st := New(mgr, time.Minute, applogger.Nop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = st.Serve(r.Context(), w, r, "sid")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for mgr.Listeners("sid") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx := context.Background()
	s := mgr.Session("sid")
	if err := s.SetToken(ctx, "jwt"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []models.SessionEventType{models.SessionLogin, models.SessionLogout} {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		if m.Type != want {
			t.Errorf("type = %s, want %s", m.Type, want)
		}
	}
}
