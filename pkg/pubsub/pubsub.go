package pubsub

import (
	"context"
	"time"
)

// Pack is one message on the bus. Key carries the partition key (account or
// drawing id), Msg carries the json payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type SubscribeHandler func(ctx context.Context, pack *Pack, t time.Time)

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
	Stop(ctx context.Context) error
}

type Subscriber interface {
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
