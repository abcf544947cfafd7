package events

import "context"

// Publisher delivers domain events to downstream consumers. Delivery is best
// effort; callers log failures and carry on.
type Publisher interface {
	PublishPostPublished(ctx context.Context, e PostPublished) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostPublished(context.Context, PostPublished) error {
	return nil
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, e PostPublished) error

func (f PublisherFunc) PublishPostPublished(ctx context.Context, e PostPublished) error {
	return f(ctx, e)
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = PublisherFunc(nil)
	_ Publisher = (*RabbitMQPublisher)(nil)
)
