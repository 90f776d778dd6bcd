package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/oxygene76/orrery/internal/types"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	commandTimeout = 5 * time.Second
)

// Client is one connected renderer. Frames arrive on send from the hub;
// replies to its own commands go through replies.
type Client struct {
	id      uuid.UUID
	remote  string
	hub     *Hub
	srv     *Server
	conn    *websocket.Conn
	send    chan []byte
	replies chan []byte
	stopped chan struct{}
	limiter *rate.Limiter
}

func newClient(srv *Server, conn *websocket.Conn) *Client {
	cfg := srv.cfg
	return &Client{
		id:      uuid.New(),
		remote:  conn.RemoteAddr().String(),
		hub:     srv.hub,
		srv:     srv,
		conn:    conn,
		send:    make(chan []byte, 64),
		replies: make(chan []byte, 16),
		stopped: make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
	}
}

// readPump decodes commands and hands them to the controller. It owns the
// read side of the connection.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: client %s read error: %v", c.id, err)
			}
			return
		}

		var msg types.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(types.Message{Type: types.MessageError}, errorsmod.Wrapf(ErrMalformed, "%v", err), nil)
			continue
		}
		if !c.limiter.Allow() {
			c.srv.metrics.limited.Inc()
			c.reply(msg, errorsmod.Wrapf(ErrRateLimited, "%s", msg.Type), nil)
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		payload, err := c.srv.ctrl.Do(reqCtx, msg)
		cancel()
		c.reply(msg, err, payload)
	}
}

// reply answers msg with an ack carrying payload, or with the registered
// error. A snapshot is answered with a frame. A payload that cannot be
// encoded is answered with ErrEncoding.
func (c *Client) reply(msg types.Message, err error, payload any) {
	out := types.Message{Type: types.MessageAck, ID: msg.ID}
	if err != nil {
		out.Type = types.MessageError
		payload = errorPayload(err)
	} else if _, ok := payload.(*types.Frame); ok {
		out.Type = types.MessageFrame
	}

	if payload != nil {
		raw, merr := json.Marshal(payload)
		if merr != nil {
			log.Printf("WS: client %s reply to %s: %v", c.id, msg.Type, merr)
			out.Type = types.MessageError
			raw, _ = json.Marshal(errorPayload(errorsmod.Wrapf(ErrEncoding, "%s: %v", msg.Type, merr)))
		}
		out.Payload = raw
	}

	data, merr := json.Marshal(out)
	if merr != nil {
		log.Printf("WS: client %s reply to %s: %v", c.id, msg.Type, merr)
		return
	}

	select {
	case c.replies <- data:
	case <-c.stopped:
	}
}

// writePump owns the write side of the connection. It exits when the hub
// closes send or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.stopped)
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case message := <-c.replies:
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	if c.srv.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.srv.cfg.WriteTimeout))
	}
	return c.conn.WriteMessage(kind, data)
}

func errorPayload(err error) types.ErrorPayload {
	codespace, code, text := errorsmod.ABCIInfo(err, false)
	return types.ErrorPayload{Codespace: codespace, Code: code, Message: text}
}
