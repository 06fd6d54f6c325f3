package sale

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/sale/repository"
	"github.com/casaantigua/anticuario/internal/sale/service"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
