package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SoulShadow8326/Signesture/internal/protocol"
	"github.com/SoulShadow8326/Signesture/internal/session"
)

// sendQueueLen bounds each connection's outbound queue. A saturated queue
// marks the observer as slow and drops the connection instead of stalling
// broadcasts for everyone else.
const sendQueueLen = 32

var errSlowObserver = errors.New("observer send queue full")

type Server struct {
	proc *session.Processor
	reg  *session.Registry
	log  *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(proc *session.Processor, reg *session.Registry, logger *log.Logger) *Server {
	return &Server{
		proc: proc,
		reg:  reg,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// client is one connected observer. Send enqueues without blocking; the
// writer goroutine owns the conn.
type client struct {
	id     string
	out    chan []byte
	cancel context.CancelFunc
}

func (c *client) ID() string { return c.id }

func (c *client) Send(payload []byte) error {
	select {
	case c.out <- payload:
		return nil
	default:
		c.cancel()
		return errSlowObserver
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		c := &client{
			id:     fmt.Sprintf("C%d", s.nextID.Add(1)),
			out:    make(chan []byte, sendQueueLen),
			cancel: cancel,
		}
		s.reg.Add(c)
		defer func() {
			s.reg.Remove(c.id)
			cancel()
		}()

		// Writer goroutine; closing the conn also unblocks the reader.
		go func() {
			defer conn.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-c.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			s.handleMessage(c, msg)
		}
	}
}

// handleMessage processes one inbound frame. Errors are echoed to the
// sender only; the connection stays open.
func (s *Server) handleMessage(c *client, msg []byte) {
	if !json.Valid(msg) {
		s.sendJSON(c, protocol.ErrorMsg{Error: protocol.ErrTextInvalidJSON})
		return
	}
	ev, err := protocol.DecodeEvent(msg)
	if err != nil {
		s.sendJSON(c, protocol.ErrorMsg{Error: protocol.ErrTextInvalidJSON})
		return
	}

	res, seq, err := s.proc.Handle(ev)
	if err != nil {
		s.sendJSON(c, protocol.ErrorMsg{Error: err.Error()})
		return
	}
	s.sendJSON(c, res)

	b, err := json.Marshal(protocol.BroadcastMsg{Broadcast: res.State})
	if err != nil {
		s.log.Printf("marshal broadcast: %v", err)
		return
	}
	s.reg.Broadcast(seq, b, c.id)
}

func (s *Server) sendJSON(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("marshal: %v", err)
		return
	}
	if err := c.Send(b); err != nil {
		s.reg.Remove(c.id)
	}
}
