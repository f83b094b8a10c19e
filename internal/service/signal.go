package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/gatepass/gatepass"
)

// SignalService fans bulk export progress out over redis pub/sub so every
// console instance can stream it to its websocket clients.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, progress gatepass.ExportProgress) error {

	jsonstr, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe streams progress messages for a channel until the context is
// cancelled. The returned channel is closed when the subscription ends.
func (s *SignalService) Subscribe(ctx context.Context, channel string) (<-chan gatepass.ExportProgress, error) {
	sub := s.rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, err
	}

	out := make(chan gatepass.ExportProgress)
	go func() {
		defer sub.Close()
		pump(ctx, sub.Channel(), out)
	}()
	return out, nil
}

// pump decodes pub/sub payloads onto out until the context is cancelled or
// the source closes. The consumer may stop reading at any time, so the
// send is guarded by the context as well; an unguarded send would strand
// the goroutine and its subscription for every disconnected client.
func pump(ctx context.Context, in <-chan *redis.Message, out chan<- gatepass.ExportProgress) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			var progress gatepass.ExportProgress
			if err := json.Unmarshal([]byte(msg.Payload), &progress); err != nil {
				continue
			}
			select {
			case out <- progress:
			case <-ctx.Done():
				return
			}
		}
	}
}
