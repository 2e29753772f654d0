package patient

import (
	"gestion-hospitaliere/internal/modules/core-services/patient/queries"
	"gestion-hospitaliere/internal/modules/core-services/patient/services"

	"go.uber.org/fx"
)

// Module services métier du domaine Patient, sans endpoints.
// Les routes sont déclarées par le module patients.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		queries.NewPatientRepository,
		fx.As(new(services.PatientRepository)),
		fx.As(new(services.PatientFileRepository)),
		fx.As(new(services.PatientReader)),
	)),
	fx.Provide(services.NewPatientCacheService),
	fx.Provide(services.NewPatientService),
	fx.Provide(services.NewPatientFileService),
)
