package auth

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/auth/repository"
	"github.com/casaantigua/anticuario/internal/auth/service"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
