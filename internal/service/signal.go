package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/catgraph/internal/domain"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Available reports whether an event bus is configured.
func (s *SignalService) Available() bool {
	return s.rdb != nil
}

func (s *SignalService) Publish(ctx context.Context, channel string, event domain.CatEvent) error {
	if s.rdb == nil {
		return nil
	}

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "failed to publish event")
	}

	return nil
}

func (s *SignalService) PublishCatEvent(ctx context.Context, event domain.CatEvent) error {
	return s.Publish(ctx, domain.CatChannel, event)
}

// Realtime forwards cat events to output until ctx is done or input is closed.
// Nothing is forwarded before the first value arrives on input. Each value replaces
// the owner filter; an empty filter matches every cat.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- domain.CatEvent) {
	if s.rdb == nil {
		return
	}

	pubsub := s.rdb.Subscribe(ctx, domain.CatChannel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	var owners []string
	listening := false

	for {
		select {
		case <-ctx.Done():
			return
		case filter, ok := <-input:
			if !ok {
				return
			}
			owners = filter
			listening = true
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !listening {
				continue
			}
			var event domain.CatEvent
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Failed to decode cat event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if len(owners) > 0 && !slices.Contains(owners, event.Cat.OwnerID) {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
