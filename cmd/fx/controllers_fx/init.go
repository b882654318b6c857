package controllers_fx

import (
	"go.uber.org/fx"

	"tripdaddy/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPlannerController),
	fx.Provide(controllers.NewItineraryController),
	fx.Provide(controllers.NewPaymentController))
