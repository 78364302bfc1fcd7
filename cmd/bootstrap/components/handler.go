package components

import (
	"island-reservations/internal/handler"
	"island-reservations/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAvailabilityHandler,
		api.NewReservationHandler,
	),
	fx.Invoke(handler.NewRouter),
)
