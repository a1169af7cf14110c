package utils

import (
	"context"
	"errors"
	"os"

	"github.com/nsqio/go-nsq"
)

const (
	// TouchSec is how often a long running handler touches its message
	TouchSec = 30

	// MaxMessageSize is the default nsqd --max-msg-size
	MaxMessageSize = 1048576

	lookupdPort = ":4161"
	nsqdPort    = ":4150"
)

var (
	// ErrNoLookupd is returned when NEWTON_NSQLOOKUP is not set
	ErrNoLookupd = errors.New("NEWTON_NSQLOOKUP environment not set")
)

// NSQDAddr returns the nsqd tcp address producers publish to. NEWTON_NSQD
// names the host; it defaults to 127.0.0.1.
func NSQDAddr() string {
	return EnvDefault("NEWTON_NSQD", "127.0.0.1") + nsqdPort
}

// NewProducer connects a producer to NSQDAddr
func NewProducer() (*nsq.Producer, error) {
	return nsq.NewProducer(NSQDAddr(), nsq.NewConfig())
}

// StartConsumer is a helper function that starts consuming a topic from NSQ. It
// will block until the context.Done() channel closes / receives a value at which
// point it gracefully shuts down the consumer.
func StartConsumer(ctx context.Context, topic, channel string, maxInFlight int, handler nsq.Handler) error {
	lookupd := os.Getenv("NEWTON_NSQLOOKUP")
	if lookupd == "" {
		return ErrNoLookupd
	}

	config := nsq.NewConfig()
	config.MaxInFlight = maxInFlight
	consumer, err := nsq.NewConsumer(topic, channel, config)
	if err != nil {
		return err
	}

	// Set the Handler for messages received by this Consumer.
	consumer.AddHandler(handler)

	// Use nsqlookupd to discover nsqd instances.
	if err := consumer.ConnectToNSQLookupd(lookupd + lookupdPort); err != nil {
		return err
	}

	// wait for signal to exit
	<-ctx.Done()

	// Gracefully stop the consumer and wait for in flight handlers.
	consumer.Stop()
	<-consumer.StopChan
	return nil
}
