package mail_fx

import (
	"go.uber.org/fx"

	"tripdaddy/internal/services"
)

var Module = fx.Provide(services.NewMailService)
