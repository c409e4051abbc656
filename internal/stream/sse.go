package stream

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServeSSE streams new donations as text/event-stream until the client goes away.
func (n *Notifier) ServeSSE(c *gin.Context) {
	client, detach, err := n.attach(marshalDonation)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer detach()

	gauge := n.metrics.StreamConnections.WithLabelValues("sse")
	gauge.Inc()
	defer gauge.Dec()

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := io.WriteString(c.Writer, ": connected\n\n"); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(n.opts.PingInterval)
	defer ticker.Stop()
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client.Send:
			if !ok {
				return false
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				n.log.Debug("sse write", zap.Error(err))
				return false
			}
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}
