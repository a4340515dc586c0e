package customer

import (
	"github.com/portpak/portpak/internal/customer/repository"
	"github.com/portpak/portpak/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
