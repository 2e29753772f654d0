package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("SuperAdmin")
	assert.Error(t, err)
	_, err = ParseRole("medecin")
	assert.Error(t, err, "la casse et les accents font partie du rôle")
}

func TestAllows_PatientList(t *testing.T) {
	assert.True(t, Allows(RoleAdmin, PatientsList))
	assert.True(t, Allows(RoleMedecin, PatientsList))
	assert.False(t, Allows(RolePatient, PatientsList))
	assert.False(t, Allows(RoleInfirmier, PatientsList))
}

func TestAllows_UnknownRoleHasNothing(t *testing.T) {
	assert.False(t, Allows(Role("Visiteur"), DashboardRead))
}

func TestAllows_RestrictedCapabilities(t *testing.T) {
	assert.False(t, Allows(RoleMedecin, RendezvousBook))
	assert.True(t, Allows(RolePatient, RendezvousBook))
	assert.True(t, Allows(RoleInfirmier, LitsManage))
	assert.False(t, Allows(RoleMedecin, LitsManage))
	assert.True(t, Allows(RoleMedecin, PrescriptionsWrite))
	assert.False(t, Allows(RoleAdmin, PrescriptionsWrite))
	assert.False(t, Allows(RoleInfirmier, FacturesManage))
}

func TestDenialMessage(t *testing.T) {
	assert.Equal(t, "Médecins ne peuvent pas créer de rendez-vous pour eux-mêmes",
		DenialMessage(RoleMedecin, RendezvousBook))
	assert.Equal(t, DefaultDenial, DenialMessage(RolePatient, PatientsList))
}

func TestPrincipal_Ownership(t *testing.T) {
	own := uuid.New()
	other := uuid.New()
	patient := &Principal{UserID: uuid.New(), Role: RolePatient, PatientID: &own}

	assert.True(t, patient.OwnsPatient(own))
	assert.False(t, patient.OwnsPatient(other))
	assert.True(t, patient.CanAccessPatient(own))
	assert.False(t, patient.CanAccessPatient(other))

	admin := &Principal{UserID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.CanAccessPatient(other))
	assert.False(t, admin.OwnsPatient(other))

	infirmier := &Principal{UserID: uuid.New(), Role: RoleInfirmier}
	assert.False(t, infirmier.CanAccessPatient(other))
}

func TestPrincipal_CanAccessRecord(t *testing.T) {
	patientID, medecinID := uuid.New(), uuid.New()

	medecin := &Principal{Role: RoleMedecin, MedecinID: &medecinID}
	assert.True(t, medecin.CanAccessRecord(uuid.New(), medecinID))
	assert.False(t, medecin.CanAccessRecord(patientID, uuid.New()))

	patient := &Principal{Role: RolePatient, PatientID: &patientID}
	assert.True(t, patient.CanAccessRecord(patientID, uuid.New()))
	assert.False(t, patient.CanAccessRecord(uuid.New(), medecinID))

	var nobody *Principal
	assert.False(t, nobody.CanAccessRecord(patientID, medecinID))
}
