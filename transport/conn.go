package transport

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"

	"github.com/noodles-run/noodles-server/engine"
)

// writeTimeout bounds every outbound frame write, the Go equivalent of
// session.go's SetWriteDeadline pattern (other_examples vango-go), since
// gorilla/websocket has no built-in per-message timeout of its own.
const writeTimeout = 10 * time.Second

// conn wraps one client's WebSocket connection. Writes are serialized with a
// mutex because both the connection's own read loop (sending replies) and
// the hub's broadcast fan-out (sending create/update/delete/invoke frames)
// write to the same *websocket.Conn concurrently - gorilla/websocket permits
// one concurrent reader and one concurrent writer, not two writers.
type conn struct {
	ws   *websocket.Conn
	id   uuid.UUID
	name string

	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, id: uuid.Must(uuid.NewV4())}
}

func (c *conn) send(frame engine.Frame) error {
	b, err := encodeFrame(frame)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.BinaryMessage, b)
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = c.ws.Close()
}

// handshake performs the §4.9 handshake: receive exactly one client-intro
// message and decode client_name, then reply with the introduction frame.
// The intro message carries no tag of its own consequence - the server
// reads its dict (index 1) for client_name and otherwise ignores it,
// mirroring rigatoni.core._handle_client's intro_msg[1]["client_name"].
func (c *conn) handshake(scene *Scene) error {
	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return err
	}
	frame, err := decodeFrame(raw)
	if err != nil {
		return err
	}
	if len(frame) >= 2 {
		if dict, ok := decodeDict(frame[1]); ok {
			if name, ok := dict["client_name"].(string); ok {
				c.name = name
			}
		}
	}
	scene.logger().Infof("client %q connecting (conn %s)", c.name, c.id)

	return c.send(scene.introduce())
}

// serve runs the steady-state receive loop (§4.9): decode each incoming
// message's content dict, dispatch it as a method invocation, and send the
// reply - until the client disconnects.
func (c *conn) serve(scene *Scene) {
	defer func() {
		scene.removeClient(c)
		scene.logger().Debugf("client %q disconnected", c.name)
		c.close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		frame, err := decodeFrame(raw)
		if err != nil {
			scene.logger().Warnf("client %q sent an unparseable frame: %v", c.name, err)
			continue
		}
		if len(frame) < 2 {
			continue
		}
		dict, ok := decodeDict(frame[1])
		if !ok {
			continue
		}

		reply := scene.handleInvoke(dict)
		if err := c.send(engine.Frame{engine.TagReply, engine.ProjectFull(reply)}); err != nil {
			return
		}
	}
}
