package dutyfee

import (
	"github.com/portpak/portpak/internal/dutyfee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dutyfee.service",
	fx.Provide(service.New),
)
