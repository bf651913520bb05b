package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/riparohq/riparo/internal/clock"
	"github.com/riparohq/riparo/internal/config"
	"github.com/riparohq/riparo/internal/logger"
	"github.com/riparohq/riparo/internal/migration"
	"github.com/riparohq/riparo/internal/server"
	"github.com/riparohq/riparo/pkg/db"
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
		server.Module,
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
