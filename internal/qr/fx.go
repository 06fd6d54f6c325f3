package qr

import (
	"go.uber.org/fx"

	"github.com/casaantigua/anticuario/internal/qr/service"
)

var Module = fx.Module("qr.service",
	fx.Provide(service.New),
)
