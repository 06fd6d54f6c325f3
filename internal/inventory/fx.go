package inventory

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/inventory/repository"
	"github.com/casaantigua/anticuario/internal/inventory/service"
)

var Module = fx.Module("inventory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
