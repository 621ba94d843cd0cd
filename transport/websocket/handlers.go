package websocket

import (
	"context"
	"fmt"
)

func (that *Server) handleGetState(_ context.Context, msg *Message, c *client) error {
	if err := c.send(actionState, that.feed.Snapshot()); err != nil {
		return fmt.Errorf("failed to answer %s: %w", msg.Action, err)
	}

	return nil
}

func (that *Server) handlePing(_ context.Context, _ *Message, c *client) error {
	return c.send(actionPong, struct{}{})
}
