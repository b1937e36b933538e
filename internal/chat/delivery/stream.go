package delivery

import (
	"io"

	"inboxpilot-backend/internal/apperror"
	"inboxpilot-backend/internal/chat/usecase"

	"github.com/gin-gonic/gin"
)

const (
	eventDelta = "delta"
	eventDone  = "done"
	eventError = "error"
)

// streamReply writes reply as server-sent events: one "delta" per fragment,
// then a single "done" or "error". The reply is always closed.
func streamReply(c *gin.Context, reply *usecase.Reply) {
	defer reply.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		if c.Request.Context().Err() != nil {
			return false
		}
		if reply.Next() {
			c.SSEvent(eventDelta, gin.H{"text": reply.Delta()})
			return true
		}
		if err := reply.Err(); err != nil {
			_, code := apperror.HTTPStatus(err)
			c.SSEvent(eventError, gin.H{"error": code})
		} else {
			c.SSEvent(eventDone, gin.H{})
		}
		return false
	})
}
