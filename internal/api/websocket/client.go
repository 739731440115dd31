package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/fortuna/prospect/internal/profile"
	"github.com/fortuna/prospect/internal/scoring"
	"github.com/fortuna/prospect/internal/service"
	"github.com/fortuna/prospect/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Evaluator answers the questions a session can ask
type Evaluator interface {
	Probability(ctx context.Context, user *store.PlayerRecord) *service.ProbabilityResult
	Compare(ctx context.Context, user *store.PlayerRecord, league store.League, top int) (*service.ComparisonResult, error)
	Rankings(ctx context.Context, q service.RankingsQuery) (*service.RankingsView, error)
}

// Client is one websocket session. It holds the user's current profile,
// replaced whenever a valid profile message arrives.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub
	eval Evaluator
	send chan ServerMessage

	mu      sync.Mutex
	closed  bool
	profile *store.PlayerRecord

	logger *log.Logger
}

// NewClient creates a new client instance
func NewClient(id string, conn *websocket.Conn, hub *Hub, eval Evaluator) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		hub:    hub,
		eval:   eval,
		send:   make(chan ServerMessage, sendBufferSize),
		logger: log.WithPrefix("ws-session").With("client", id),
	}
}

// Profile returns the session's current profile, nil before one is set
func (c *Client) Profile() *store.PlayerRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Client) setProfile(p *store.PlayerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
}

// TrySend queues msg without blocking. Returns false if the buffer is full
// or the session is closed.
func (c *Client) TrySend(msg ServerMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames from the connection until it closes
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.sendError("invalid_message", "message is not valid JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Unexpected close", "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.handleMessage(ctx, msg)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case TypeProfile:
		c.handleProfile(ctx, msg.Payload)
	case TypeProbability:
		c.reply(TypeProbability, c.eval.Probability(ctx, c.Profile()))
	case TypeCompare:
		c.handleCompare(ctx, msg.Payload)
	case TypeRankings:
		c.handleRankings(ctx, msg.Payload)
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type)
	}
}

// handleProfile validates and stores a profile, then replies with its
// probability. An invalid profile leaves the current one in place.
func (c *Client) handleProfile(ctx context.Context, payload json.RawMessage) {
	user, err := profile.Decode(payload)
	if err != nil {
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			c.TrySend(ServerMessage{
				Type:      TypeProfileInvalid,
				Payload:   ErrorMessage{Code: "invalid_profile", Message: verr.Error(), Fields: verr.Fields},
				Timestamp: time.Now(),
			})
			return
		}
		c.sendError("invalid_payload", err.Error())
		return
	}

	c.setProfile(user)
	c.logger.Debug("Profile updated", "level", user.CompetitionLevel, "age", user.Age)
	c.reply(TypeProbability, c.eval.Probability(ctx, user))
}

func (c *Client) handleCompare(ctx context.Context, payload json.RawMessage) {
	var req CompareRequest
	if !c.decode(payload, &req) {
		return
	}

	user := c.Profile()
	if user == nil {
		c.sendError("no_profile", "send a profile before asking for comparisons")
		return
	}

	league, err := parseLeague(req.League)
	if err != nil {
		c.sendError("unknown_league", err.Error())
		return
	}

	result, err := c.eval.Compare(ctx, user, league, req.Top)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.reply(TypeComparisons, result)
}

func (c *Client) handleRankings(ctx context.Context, payload json.RawMessage) {
	var req RankingsRequest
	if !c.decode(payload, &req) {
		return
	}

	league, err := parseLeague(req.League)
	if err != nil {
		c.sendError("unknown_league", err.Error())
		return
	}

	q := service.RankingsQuery{League: league, Search: req.Search, User: c.Profile()}
	if req.SortBy != "" {
		if q.SortBy, err = scoring.ParseStatistic(req.SortBy); err != nil {
			c.sendError("unknown_statistic", err.Error())
			return
		}
	}

	view, err := c.eval.Rankings(ctx, q)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.reply(TypeRankings, view)
}

// decode unmarshals an optional payload, reporting failures to the client
func (c *Client) decode(payload json.RawMessage, v interface{}) bool {
	if len(payload) == 0 {
		return true
	}
	if err := json.Unmarshal(payload, v); err != nil {
		c.sendError("invalid_payload", err.Error())
		return false
	}
	return true
}

func parseLeague(raw string) (store.League, error) {
	if raw == "" {
		return store.LeagueNBA, nil
	}
	return store.ParseLeague(raw)
}

func (c *Client) reply(msgType string, payload interface{}) {
	if !c.TrySend(ServerMessage{Type: msgType, Payload: payload, Timestamp: time.Now()}) {
		c.logger.Warn("Dropped reply", "type", msgType)
	}
}

func (c *Client) sendFailure(err error) {
	code := "evaluation_failed"
	if errors.Is(err, service.ErrNoRosters) {
		code = "rosters_unavailable"
	}
	c.sendError(code, err.Error())
}

func (c *Client) sendError(code, message string) {
	c.TrySend(ServerMessage{
		Type:      TypeError,
		Payload:   ErrorMessage{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}
