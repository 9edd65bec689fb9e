// Package events publishes content lifecycle events to a message broker so
// downstream consumers (newsletter sender, cache invalidator) can react
// without coupling to the API process.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/RainersCode/rugby-team-portal/config"
)

// Channels carrying content events.
const (
	ChannelArticlePublished = "content.article.published"
	ChannelMatchResult      = "content.match.result"
	ChannelActivityCreated  = "content.activity.created"
)

// Transport is the broker-agnostic publish operation. Implemented by the
// RabbitMQ and Pub/Sub backends.
type Transport interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher serializes domain events and hands them to the transport.
// Publish failures are logged, never propagated: content writes must not
// fail because the broker is down.
type Publisher struct {
	transport Transport
}

// NewPublisher selects a transport from config. An empty backend returns a
// disabled publisher whose methods are no-ops.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (*Publisher, error) {
	switch cfg.Backend {
	case "":
		return &Publisher{}, nil
	case "rabbitmq":
		transport, err := NewRabbitMQTransport(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return &Publisher{transport: transport}, nil
	case "pubsub":
		transport, err := NewPubSubTransport(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return &Publisher{transport: transport}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// ArticlePublished announces that an article went live.
func (p *Publisher) ArticlePublished(ctx context.Context, articleID, slug string) {
	p.publish(ctx, ChannelArticlePublished, map[string]string{
		"article_id": articleID,
		"slug":       slug,
	})
}

// MatchResult announces a recorded final score.
func (p *Publisher) MatchResult(ctx context.Context, matchID string, homeScore, awayScore int) {
	p.publish(ctx, ChannelMatchResult, map[string]any{
		"match_id":   matchID,
		"home_score": homeScore,
		"away_score": awayScore,
	})
}

// ActivityCreated announces a new club activity.
func (p *Publisher) ActivityCreated(ctx context.Context, activityID, title string) {
	p.publish(ctx, ChannelActivityCreated, map[string]string{
		"activity_id": activityID,
		"title":       title,
	})
}

// Close releases the transport.
func (p *Publisher) Close() error {
	if p.transport == nil {
		return nil
	}
	return p.transport.Close()
}

func (p *Publisher) publish(ctx context.Context, channel string, payload any) {
	if p.transport == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode event", slog.String("channel", channel), slog.String("error", err.Error()))
		return
	}

	attrs := map[string]string{"published_at": time.Now().UTC().Format(time.RFC3339)}
	if _, err := p.transport.Publish(ctx, channel, data, attrs); err != nil {
		slog.Error("failed to publish event", slog.String("channel", channel), slog.String("error", err.Error()))
	}
}
