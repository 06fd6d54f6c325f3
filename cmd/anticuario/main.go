package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/config"
	"github.com/casaantigua/anticuario/internal/migration"
	"github.com/casaantigua/anticuario/internal/observability"
	"github.com/casaantigua/anticuario/internal/server"
	"github.com/casaantigua/anticuario/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
