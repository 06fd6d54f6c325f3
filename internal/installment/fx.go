package installment

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/installment/repository"
	"github.com/casaantigua/anticuario/internal/installment/service"
)

var Module = fx.Module("installment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
