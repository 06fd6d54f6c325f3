package landing

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/landing/repository"
	"github.com/casaantigua/anticuario/internal/landing/service"
)

var Module = fx.Module("landing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
