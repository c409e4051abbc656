package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"nuoitoi/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type      string           `json:"type"`
	Donation  *models.Donation `json:"donation,omitempty"`
	OrderCode int64            `json:"orderCode,omitempty"`
	Status    string           `json:"status,omitempty"`
}

func encodeWS(d models.Donation) ([]byte, error) {
	return json.Marshal(wsMessage{Type: "donation", Donation: &d})
}

// ServeWS is the WebSocket feed. Clients may send {"type":"watch","orderCode":N}
// to receive payment_status messages for their own order.
func (n *Notifier) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client, detach, err := n.attach(encodeWS)
	if err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	defer detach()

	gauge := n.metrics.StreamConnections.WithLabelValues("websocket")
	gauge.Inc()
	defer gauge.Dec()

	hello, _ := json.Marshal(wsMessage{Type: "connected"})
	client.Offer(hello)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go n.writePump(ctx, client, conn)
	n.readPump(ctx, client, conn)
}

func (n *Notifier) writePump(ctx context.Context, client *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(n.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			conn.Close()
			return
		case msg, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				n.log.Debug("ws write", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (n *Notifier) readPump(ctx context.Context, client *Client, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var (
		mu         sync.Mutex
		generation int
		stopWatch  context.CancelFunc
	)
	defer func() {
		mu.Lock()
		if stopWatch != nil {
			stopWatch()
		}
		mu.Unlock()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg struct {
			Type      string `json:"type"`
			OrderCode int64  `json:"orderCode"`
		}
		if json.Unmarshal(raw, &msg) != nil || msg.Type != "watch" || msg.OrderCode <= 0 || n.watcher == nil {
			continue
		}

		mu.Lock()
		if stopWatch != nil {
			stopWatch()
		}
		generation++
		gen := generation
		wctx, cancel := context.WithCancel(ctx)
		stopWatch = cancel
		mu.Unlock()

		code := msg.OrderCode
		go n.watcher.WatchStatus(wctx, code, func(status string) {
			mu.Lock()
			defer mu.Unlock()
			if gen != generation || wctx.Err() != nil {
				return
			}
			data, _ := json.Marshal(wsMessage{Type: "payment_status", OrderCode: code, Status: status})
			client.Offer(data)
		})
	}
}
