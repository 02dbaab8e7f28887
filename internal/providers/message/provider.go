// Package message abstracts the proactive-messaging transport used to
// notify customers. The engine treats it as fire-and-forget: send failures
// are logged by the caller and never fail a booking.
package message

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Provider interface {
	SendProactiveMessage(ctx context.Context, to string, text string, customerID snowflake.ID) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) SendProactiveMessage(ctx context.Context, to string, text string, customerID snowflake.ID) error {
	return nil
}
