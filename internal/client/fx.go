package client

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/client/repository"
	"github.com/casaantigua/anticuario/internal/client/service"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
