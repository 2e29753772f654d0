package bedlifecycle

import (
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/queries"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/services"
	patientServices "gestion-hospitaliere/internal/modules/core-services/patient/services"

	"go.uber.org/fx"
)

// Module gestionnaire du cycle de vie des lits, partagé par chambres et lits
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewBedRepository, fx.As(new(services.BedStore)))),
	fx.Provide(func(c *patientServices.PatientCacheService) services.PatientInvalidator { return c }),
	fx.Provide(services.NewBedLifecycleService),
)
