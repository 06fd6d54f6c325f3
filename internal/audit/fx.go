package audit

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/audit/repository"
	"github.com/casaantigua/anticuario/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
