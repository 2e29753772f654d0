package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/prescriptions/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryPrescriptions struct {
	rows     map[uuid.UUID]*dto.Prescription
	patients map[uuid.UUID]bool
	last     dto.PrescriptionFilter
}

func (m *memoryPrescriptions) List(_ context.Context, filter dto.PrescriptionFilter, _ utils.Pagination) ([]dto.Prescription, int64, error) {
	m.last = filter
	out := []dto.Prescription{}
	for _, p := range m.rows {
		if filter.PatientID != nil && p.Patient.ID != *filter.PatientID {
			continue
		}
		if filter.MedecinID != nil && p.Medecin.ID != *filter.MedecinID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memoryPrescriptions) FindByID(_ context.Context, id uuid.UUID) (*dto.Prescription, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (m *memoryPrescriptions) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.patients[id], nil
}

func (m *memoryPrescriptions) Create(_ context.Context, p dto.NewPrescription) (uuid.UUID, error) {
	id := uuid.New()
	m.rows[id] = &dto.Prescription{
		ID:         id,
		Patient:    dto.PatientSummary{ID: p.PatientID},
		Medecin:    dto.MedecinSummary{ID: p.MedecinID},
		Contenu:    p.Contenu,
		FichierPDF: p.FichierPDF,
		Date:       utils.Date{Time: p.Date},
	}
	return id, nil
}

func (m *memoryPrescriptions) Update(_ context.Context, id uuid.UUID, ch dto.PrescriptionChanges) (bool, error) {
	p, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if ch.Contenu != nil {
		p.Contenu = *ch.Contenu
	}
	if ch.Date != nil {
		p.Date = utils.Date{Time: *ch.Date}
	}
	if ch.FichierPDF != nil {
		p.FichierPDF = ch.FichierPDF
	}
	return true, nil
}

func (m *memoryPrescriptions) Delete(_ context.Context, id uuid.UUID) (*string, bool, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, false, nil
	}
	delete(m.rows, id)
	return p.FichierPDF, true, nil
}

type fixture struct {
	svc      *PrescriptionService
	repo     *memoryPrescriptions
	root     string
	patient  uuid.UUID
	medecin  *policy.Principal
	other    *policy.Principal
	owner    *policy.Principal
	admin    *policy.Principal
	stranger *policy.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStore(&storage.Config{Root: root})
	require.NoError(t, err)

	patientID := uuid.New()
	otherPatient := uuid.New()
	medecinID := uuid.New()
	otherMedecin := uuid.New()
	repo := &memoryPrescriptions{rows: map[uuid.UUID]*dto.Prescription{}, patients: map[uuid.UUID]bool{patientID: true}}

	svc := NewPrescriptionService(repo, store, zap.NewNop())
	svc.now = func() time.Time { return time.Unix(1717408800, 0) }

	return &fixture{
		svc:      svc,
		repo:     repo,
		root:     root,
		patient:  patientID,
		medecin:  &policy.Principal{UserID: uuid.New(), Role: policy.RoleMedecin, MedecinID: &medecinID},
		other:    &policy.Principal{UserID: uuid.New(), Role: policy.RoleMedecin, MedecinID: &otherMedecin},
		owner:    &policy.Principal{UserID: uuid.New(), Role: policy.RolePatient, PatientID: &patientID},
		admin:    &policy.Principal{UserID: uuid.New(), Role: policy.RoleAdmin},
		stranger: &policy.Principal{UserID: uuid.New(), Role: policy.RolePatient, PatientID: &otherPatient},
	}
}

func (f *fixture) request() dto.CreatePrescriptionRequest {
	return dto.CreatePrescriptionRequest{PatientID: f.patient.String(), Contenu: "Paracétamol 1g, 3 fois par jour", Date: "2025-06-03"}
}

func pdf(name string) (*dto.Attachment, *strings.Reader) {
	body := "%PDF-1.4 ordonnance"
	return &dto.Attachment{Filename: name, ContentType: "application/pdf", Size: int64(len(body))}, strings.NewReader(body)
}

func TestPrescriptionService_OnlyMedecinsCreate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, f.request(), nil, nil)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindForbidden, appErr.Kind)
	assert.Equal(t, "Seuls les médecins peuvent créer des prescriptions", appErr.Message)

	p, err := f.svc.Create(context.Background(), f.medecin, f.request(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, *f.medecin.MedecinID, p.Medecin.ID)
	assert.Nil(t, p.FichierPDF)
}

func TestPrescriptionService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.PatientID = uuid.NewString()
	_, err := f.svc.Create(context.Background(), f.medecin, req, nil, nil)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "patient_id")

	attachment, content := pdf("photo.png")
	attachment.ContentType = "image/png"
	_, err = f.svc.Create(context.Background(), f.medecin, f.request(), attachment, content)
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "fichier_pdf")

	attachment, content = pdf("gros.pdf")
	attachment.Size = storage.MaxPDFSize + 1
	_, err = f.svc.Create(context.Background(), f.medecin, f.request(), attachment, content)
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "fichier_pdf")
}

func TestPrescriptionService_StoresPDF(t *testing.T) {
	f := newFixture(t)
	attachment, content := pdf("ordonnance.pdf")

	p, err := f.svc.Create(context.Background(), f.medecin, f.request(), attachment, content)
	require.NoError(t, err)
	require.NotNil(t, p.FichierPDF)
	assert.Equal(t, "prescriptions/1717408800_ordonnance.pdf", *p.FichierPDF)

	_, err = os.Stat(filepath.Join(f.root, "prescriptions", "1717408800_ordonnance.pdf"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.medecin, p.ID))
	_, err = os.Stat(filepath.Join(f.root, "prescriptions", "1717408800_ordonnance.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrescriptionService_RecordAccess(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), f.medecin, f.request(), nil, nil)
	require.NoError(t, err)

	for _, actor := range []*policy.Principal{f.medecin, f.owner, f.admin} {
		_, err := f.svc.Get(context.Background(), actor, p.ID)
		assert.NoError(t, err)
	}
	for _, actor := range []*policy.Principal{f.other, f.stranger} {
		_, err := f.svc.Get(context.Background(), actor, p.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	}

	contenu := "Ibuprofène 400mg"
	_, err = f.svc.Update(context.Background(), f.other, p.ID, dto.UpdatePrescriptionRequest{Contenu: &contenu}, nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	updated, err := f.svc.Update(context.Background(), f.medecin, p.ID, dto.UpdatePrescriptionRequest{Contenu: &contenu}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, contenu, updated.Contenu)

	err = f.svc.Delete(context.Background(), f.admin, p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = f.svc.Get(context.Background(), f.admin, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestPrescriptionService_ListIsScoped(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.List(context.Background(), f.owner, dto.PrescriptionFilter{}, utils.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.NotNil(t, f.repo.last.PatientID)
	assert.Equal(t, f.patient, *f.repo.last.PatientID)

	_, _, err = f.svc.List(context.Background(), f.medecin, dto.PrescriptionFilter{}, utils.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, *f.medecin.MedecinID, *f.repo.last.MedecinID)

	_, _, err = f.svc.List(context.Background(), f.admin, dto.PrescriptionFilter{}, utils.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Nil(t, f.repo.last.PatientID)
	assert.Nil(t, f.repo.last.MedecinID)
}
