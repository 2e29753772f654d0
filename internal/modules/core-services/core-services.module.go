package core_services

import (
	"gestion-hospitaliere/internal/modules/core-services/availability"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle"
	"gestion-hospitaliere/internal/modules/core-services/patient"

	"go.uber.org/fx"
)

// Module services métier partagés entre plusieurs modules, sans endpoints propres
var Module = fx.Options(
	patient.Module,
	availability.Module,
	bedlifecycle.Module,
)
