package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/prospect/internal/scoring"
	"github.com/fortuna/prospect/internal/store"
)

// Stream names
const (
	StreamEvaluations = "prospect.evaluations"
	StreamRosters     = "prospect.rosters"
)

// Event types
const (
	EventEvaluated        = "prospect.evaluated"
	EventRostersRefreshed = "rosters.refreshed"
)

// streams are capped so an idle consumer can't grow them without bound
const defaultMaxLen = 10000

// EvaluationEvent describes one probability evaluation. It carries the
// inputs that shaped the result, never the full profile.
type EvaluationEvent struct {
	CompetitionLevel store.CompetitionLevel `json:"competition_level"`
	Age              int                    `json:"age"`
	Estimate         *scoring.Estimate      `json:"estimate"`
}

// RosterRefreshEvent summarises a completed roster load
type RosterRefreshEvent struct {
	Counts map[store.League]int    `json:"counts"`
	Errors map[store.League]string `json:"errors,omitempty"`
	Forced bool                    `json:"forced"`
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	maxLen int64
	now    func() time.Time
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		maxLen: defaultMaxLen,
		now:    time.Now,
	}
}

// PublishEvaluation appends an evaluation to the evaluations stream
func (rsp *RedisStreamPublisher) PublishEvaluation(ctx context.Context, ev EvaluationEvent) error {
	return rsp.publish(ctx, StreamEvaluations, EventEvaluated, ev)
}

// PublishRosterRefresh appends a refresh summary to the rosters stream
func (rsp *RedisStreamPublisher) PublishRosterRefresh(ctx context.Context, ev RosterRefreshEvent) error {
	return rsp.publish(ctx, StreamRosters, EventRostersRefreshed, ev)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	err = rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: rsp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":        uuid.NewString(),
			"type":      eventType,
			"data":      string(data),
			"timestamp": rsp.now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}
	return nil
}
