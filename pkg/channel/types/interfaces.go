package types

import "context"

// Client is the outbound surface of the messaging channel.
type Client interface {
	SendText(ctx context.Context, phone, text string) (string, error)
	SendImage(ctx context.Context, phone, imagePath, caption string) (string, error)
	HealthCheck(ctx context.Context) error
}

// EventHandler consumes one status event from the channel socket.
type EventHandler func(ctx context.Context, event StatusEvent) error
