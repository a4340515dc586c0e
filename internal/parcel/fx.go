package parcel

import (
	"github.com/portpak/portpak/internal/parcel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parcel.service",
	fx.Provide(service.New),
)
