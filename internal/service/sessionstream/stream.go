// Package sessionstream pushes session login/logout events over a websocket.
package sessionstream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/service/metrics"
	"StockDash/internal/service/session"
	applogger "StockDash/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	eventBuffer         = 16
)

// Message is the frame written per event.
type Message struct {
	Type models.SessionEventType `json:"type"`
	At   time.Time               `json:"at"`
}

// Stream upgrades requests and forwards one session's events to the socket.
type Stream struct {
	sessions     *session.Manager
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	log          *applogger.Logger
}

func New(sessions *session.Manager, pingInterval time.Duration, l *applogger.Logger) *Stream {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	metrics.Register()
	return &Stream{
		sessions:     sessions,
		pingInterval: pingInterval,
		log:          l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve blocks until the client disconnects or ctx ends.
func (s *Stream) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("session stream upgrade: %w", err)
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan models.SessionEvent, eventBuffer)
	unsubscribe := s.sessions.Session(sessionID).Subscribe(func(ev models.SessionEvent) {
		select {
		case events <- ev:
		default:
			// drop on backpressure
			metrics.StreamEvents.WithLabelValues(string(ev.Type), "dropped").Inc()
		}
	})
	defer unsubscribe()

	// read loop only detects close; clients send nothing meaningful
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Message{Type: ev.Type, At: ev.At}); err != nil {
				s.log.Debug("session stream write failed", applogger.String("session", sessionID), applogger.Error(err))
				return nil
			}
			metrics.StreamEvents.WithLabelValues(string(ev.Type), "sent").Inc()
		}
	}
}
