package invoice

import (
	"github.com/portpak/portpak/internal/invoice/render"
	"github.com/portpak/portpak/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.New),
	fx.Provide(render.New),
)
