package server

import (
	"context"
	"io"

	"github.com/coder/websocket"
)

var _ io.Writer = &websocketWriter{}

// websocketWriter writes every Write call as a single websocket message.
type websocketWriter struct {
	Ctx         context.Context
	Websocket   *websocket.Conn
	MessageType websocket.MessageType
}

func (w *websocketWriter) Write(b []byte) (int, error) {
	err := w.Websocket.Write(w.Ctx, w.MessageType, b)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}
