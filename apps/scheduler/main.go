// Headless deployment of the processing engine: runs scheduled passes
// without serving the HTTP API.
package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/booking"
	"github.com/smallbiznis/bookflow/internal/catalog"
	"github.com/smallbiznis/bookflow/internal/clock"
	"github.com/smallbiznis/bookflow/internal/config"
	"github.com/smallbiznis/bookflow/internal/conversation"
	"github.com/smallbiznis/bookflow/internal/customer"
	"github.com/smallbiznis/bookflow/internal/logger"
	"github.com/smallbiznis/bookflow/internal/migration"
	"github.com/smallbiznis/bookflow/internal/providers/message"
	"github.com/smallbiznis/bookflow/internal/recurring"
	"github.com/smallbiznis/bookflow/internal/scheduler"
	"github.com/smallbiznis/bookflow/internal/series"
	"github.com/smallbiznis/bookflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain services required by the engine
		customer.Module,
		catalog.Module,
		conversation.Module,
		series.Module,
		booking.Module,
		message.Module,

		recurring.Module,
		scheduler.Module,

		// No server module.
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
