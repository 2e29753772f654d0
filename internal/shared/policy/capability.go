package policy

// Capability action protégée déclarée par une route
type Capability string

const (
	ServicesManage Capability = "services:manage"

	MedecinsRead   Capability = "medecins:read"
	MedecinsManage Capability = "medecins:manage"

	PatientsList   Capability = "patients:list"
	PatientsCreate Capability = "patients:create"
	PatientsRead   Capability = "patients:read"
	PatientsUpdate Capability = "patients:update"
	PatientsDelete Capability = "patients:delete"

	RendezvousRead   Capability = "rendezvous:read"
	RendezvousBook   Capability = "rendezvous:book"
	RendezvousUpdate Capability = "rendezvous:update"
	RendezvousStatus Capability = "rendezvous:status"

	PrescriptionsRead  Capability = "prescriptions:read"
	PrescriptionsWrite Capability = "prescriptions:write"

	FacturesManage Capability = "factures:manage"

	ChambresRead   Capability = "chambres:read"
	ChambresManage Capability = "chambres:manage"

	LitsRead   Capability = "lits:read"
	LitsManage Capability = "lits:manage"

	DashboardRead   Capability = "dashboard:read"
	DashboardExport Capability = "dashboard:export"

	UsersManage Capability = "users:manage"
)

// Table unique rôle -> capacités. Les restrictions par enregistrement
// (patient propriétaire, médecin assigné) sont vérifiées par les services.
var grants = map[Role]map[Capability]bool{
	RoleAdmin: set(
		ServicesManage,
		MedecinsRead, MedecinsManage,
		PatientsList, PatientsCreate, PatientsRead, PatientsUpdate, PatientsDelete,
		RendezvousRead, RendezvousBook, RendezvousUpdate, RendezvousStatus,
		PrescriptionsRead,
		FacturesManage,
		ChambresRead, ChambresManage,
		LitsRead, LitsManage,
		DashboardRead, DashboardExport,
		UsersManage,
	),
	RoleMedecin: set(
		MedecinsRead,
		PatientsList, PatientsCreate, PatientsRead, PatientsUpdate, PatientsDelete,
		RendezvousRead, RendezvousUpdate, RendezvousStatus,
		PrescriptionsRead, PrescriptionsWrite,
		ChambresRead,
		LitsRead,
		DashboardRead,
	),
	RolePatient: set(
		MedecinsRead,
		PatientsRead, PatientsUpdate,
		RendezvousRead, RendezvousBook, RendezvousUpdate,
		PrescriptionsRead,
		ChambresRead,
		LitsRead,
		DashboardRead,
	),
	RoleInfirmier: set(
		MedecinsRead,
		RendezvousRead,
		ChambresRead,
		LitsRead, LitsManage,
		DashboardRead,
	),
}

type denial struct {
	role       Role
	capability Capability
}

var denialMessages = map[denial]string{
	{RoleMedecin, RendezvousBook}:       "Médecins ne peuvent pas créer de rendez-vous pour eux-mêmes",
	{RolePatient, RendezvousStatus}:     "Les patients ne peuvent pas modifier le statut des rendez-vous",
	{RoleAdmin, PrescriptionsWrite}:     "Seuls les médecins peuvent créer des prescriptions",
	{RoleInfirmier, PrescriptionsWrite}: "Seuls les médecins peuvent créer des prescriptions",
	{RolePatient, PrescriptionsWrite}:   "Seuls les médecins peuvent créer des prescriptions",
}

// DefaultDenial message de refus générique
const DefaultDenial = "Accès non autorisé"

func set(capabilities ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(capabilities))
	for _, c := range capabilities {
		m[c] = true
	}
	return m
}

// Allows indique si le rôle dispose de la capacité
func Allows(role Role, capability Capability) bool {
	return grants[role][capability]
}

// DenialMessage message affiché quand role n'a pas capability
func DenialMessage(role Role, capability Capability) string {
	if msg, ok := denialMessages[denial{role, capability}]; ok {
		return msg
	}
	return DefaultDenial
}
