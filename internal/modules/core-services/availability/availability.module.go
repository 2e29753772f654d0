package availability

import (
	"gestion-hospitaliere/internal/modules/core-services/availability/queries"
	"gestion-hospitaliere/internal/modules/core-services/availability/services"

	"go.uber.org/fx"
)

// Module vérificateur de disponibilité partagé par médecins et rendez-vous
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewAvailabilityRepository, fx.As(new(services.AvailabilityStore)))),
	fx.Provide(services.NewAvailabilityService),
)
