package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"agentsight/internal/domain/event"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// handleStream upgrades the connection, attaches it to the hub (which
// sends the initial snapshot), then drains client frames until the
// transport closes. Inbound frames carry no meaning; the read loop exists
// to detect disconnects.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := &wsSubscriber{
		id:   uuid.NewString(),
		conn: conn,
	}

	if err := h.hub.Attach(r.Context(), sub); err != nil {
		conn.Close()
		return
	}
	defer func() {
		h.hub.Detach(r.Context(), sub)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsSubscriber adapts a websocket connection to stream.Subscriber. The
// write lock keeps concurrent broadcasts from interleaving frames and
// preserves commit order per connection.
type wsSubscriber struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) Send(msg event.StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
