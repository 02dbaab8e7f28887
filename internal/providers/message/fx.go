package message

import (
	"github.com/smallbiznis/bookflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideProvider(cfg config.Config, log *zap.Logger) Provider {
	if cfg.MessageGatewayURL == "" {
		log.Warn("no message gateway configured, customer notifications are dropped")
		return &NoOpProvider{}
	}
	return NewWebhookProvider(cfg.MessageGatewayURL)
}

// Module wires the proactive-messaging provider.
var Module = fx.Module("providers.message",
	fx.Provide(ProvideProvider),
)
