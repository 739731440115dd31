package websocket

import (
	"encoding/json"
	"time"
)

// Messages a client may send
const (
	TypeProfile     = "profile"
	TypeProbability = "probability"
	TypeCompare     = "compare"
	TypeRankings    = "rankings"
)

// Messages the server sends
const (
	TypeSession          = "session"
	TypeProfileInvalid   = "profile_invalid"
	TypeComparisons      = "comparisons"
	TypeError            = "error"
	TypeRostersRefreshed = "rosters_refreshed"
)

// ClientMessage is one inbound frame
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is one outbound frame
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorMessage is the payload of error and profile_invalid frames
type ErrorMessage struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SessionInfo greets a new connection
type SessionInfo struct {
	ClientID string `json:"client_id"`
}

// CompareRequest is the payload of a compare message
type CompareRequest struct {
	League string `json:"league"`
	Top    int    `json:"top"`
}

// RankingsRequest is the payload of a rankings message
type RankingsRequest struct {
	League string `json:"league"`
	SortBy string `json:"sort_by"`
	Search string `json:"search"`
}
