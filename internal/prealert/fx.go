package prealert

import (
	"github.com/portpak/portpak/internal/prealert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prealert.service",
	fx.Provide(service.New),
)
