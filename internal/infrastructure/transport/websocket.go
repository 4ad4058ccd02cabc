package transport

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	appexec "github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

const (
	writeWait = 10 * time.Second
	// Close frame payloads are limited to 125 bytes, two of which hold the code.
	maxCloseReason = 123
)

// ErrConnectionClosed is returned by Send after Close.
var ErrConnectionClosed = errors.New("websocket connection closed")

// wsConnection adapts a gorilla connection to ports.Connection. Writes are
// serialized; reads happen only in readLoop.
type wsConnection struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func newWSConnection(conn *websocket.Conn, readLimit int64) *wsConnection {
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}
	return &wsConnection{conn: conn}
}

// Send implements ports.Connection.
func (c *wsConnection) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close implements ports.Connection. It sends a normal closure frame
// carrying reason and releases the socket. Repeated calls are no-ops.
func (c *wsConnection) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	writeErr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	closeErr := c.conn.Close()
	if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
		return writeErr
	}
	return closeErr
}

// readLoop delivers every inbound data message to the session until the
// connection fails or closes, then disconnects the session.
func (c *wsConnection) readLoop(session *appexec.Session) error {
	defer session.Disconnect()
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			session.Deliver(string(data))
		}
	}
}

// programID reads the program id from the snippetId or id query parameter or
// the trailing path segment.
func programID(r *http.Request) string {
	q := r.URL.Query()
	if id := q.Get("snippetId"); id != "" {
		return id
	}
	if id := q.Get("id"); id != "" {
		return id
	}
	return r.PathValue("id")
}

func (s *Server) handleInteractive(w http.ResponseWriter, r *http.Request) {
	id := programID(r)
	correlationID := logging.GetCorrelationID(r.Context())
	ctx := logging.WithCorrelationID(s.base, correlationID)

	var (
		conn     *wsConnection
		attempts int
	)
	accept := func() (ports.Connection, error) {
		attempts++
		header := http.Header{}
		header.Set(CorrelationHeader, correlationID)
		ws, err := s.upgrader.Upgrade(w, r, header)
		if err != nil {
			return nil, err
		}
		conn = newWSConnection(ws, s.cfg.ReadLimit)
		return conn, nil
	}

	session, err := s.executor.RunInteractive(ctx, appexec.InteractiveRequest{
		ProgramID:  id,
		Credential: bearerToken(r.Header.Get("Authorization")),
		Accept:     accept,
	})
	if err != nil {
		// A failed upgrade has already answered the request.
		if attempts == 0 {
			writeError(w, err)
		}
		return
	}

	s.logger.Debug(ctx, "websocket session started", "session_id", session.ID(), "program_id", id)
	if err := conn.readLoop(session); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Debug(ctx, "websocket read ended", "session_id", session.ID(), "error", err)
	}
	<-session.Done()
}

var _ ports.Connection = (*wsConnection)(nil)
