package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/factures/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryFactures struct {
	rows     map[uuid.UUID]*dto.Facture
	patients map[uuid.UUID]bool
}

func (m *memoryFactures) List(context.Context, dto.FactureFilter, utils.Pagination) ([]dto.Facture, int64, error) {
	return nil, 0, nil
}

func (m *memoryFactures) FindByID(_ context.Context, id uuid.UUID) (*dto.Facture, error) {
	f, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *f
	return &out, nil
}

func (m *memoryFactures) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.patients[id], nil
}

func (m *memoryFactures) Create(_ context.Context, f dto.NewFacture) (uuid.UUID, error) {
	id := uuid.New()
	m.rows[id] = &dto.Facture{
		ID:          id,
		Patient:     dto.PatientSummary{ID: f.PatientID},
		Montant:     f.Montant,
		Statut:      f.Statut,
		Date:        utils.Date{Time: f.Date},
		FichierPDF:  f.FichierPDF,
		Description: f.Description,
	}
	return id, nil
}

func (m *memoryFactures) Update(_ context.Context, id uuid.UUID, ch dto.FactureChanges) (bool, error) {
	f, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if ch.Montant != nil {
		f.Montant = *ch.Montant
	}
	if ch.Statut != nil {
		f.Statut = *ch.Statut
	}
	if ch.FichierPDF != nil {
		f.FichierPDF = ch.FichierPDF
	}
	return true, nil
}

func (m *memoryFactures) Delete(_ context.Context, id uuid.UUID) (*string, bool, error) {
	f, ok := m.rows[id]
	if !ok {
		return nil, false, nil
	}
	delete(m.rows, id)
	return f.FichierPDF, true, nil
}

func newTestService(t *testing.T) (*FactureService, *memoryFactures, string, uuid.UUID) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStore(&storage.Config{Root: root})
	require.NoError(t, err)

	patientID := uuid.New()
	repo := &memoryFactures{rows: map[uuid.UUID]*dto.Facture{}, patients: map[uuid.UUID]bool{patientID: true}}
	svc := NewFactureService(repo, store, zap.NewNop())
	return svc, repo, root, patientID
}

func amount(v float64) *float64 { return &v }

func TestFactureService_CreateDefaultsToPending(t *testing.T) {
	svc, _, _, patientID := newTestService(t)

	f, err := svc.Create(context.Background(), dto.CreateFactureRequest{
		PatientID: patientID.String(),
		Montant:   amount(25000),
		Date:      "2025-06-03",
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.StatutEnAttente, f.Statut)
	assert.Equal(t, 25000.0, f.Montant)
	assert.Equal(t, "2025-06-03", f.Date.Format(utils.DateLayout))
}

func TestFactureService_CreateUnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), dto.CreateFactureRequest{
		PatientID: uuid.NewString(),
		Montant:   amount(10),
		Date:      "2025-06-03",
	}, nil, nil)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "patient_id")
}

func TestFactureService_ReplacingPDFRemovesPrevious(t *testing.T) {
	svc, _, root, patientID := newTestService(t)
	tick := time.Unix(1717408800, 0)
	svc.now = func() time.Time { return tick }

	body := "%PDF-1.4 facture"
	f, err := svc.Create(context.Background(), dto.CreateFactureRequest{
		PatientID: patientID.String(),
		Montant:   amount(12000),
		Date:      "2025-06-03",
	}, &dto.Attachment{Filename: "juin.pdf", ContentType: "application/pdf", Size: int64(len(body))}, strings.NewReader(body))
	require.NoError(t, err)
	require.NotNil(t, f.FichierPDF)
	first := filepath.Join(root, "factures", "1717408800_juin.pdf")
	_, err = os.Stat(first)
	require.NoError(t, err)

	tick = tick.Add(time.Minute)
	payee := dto.StatutPayee
	updated, err := svc.Update(context.Background(), f.ID, dto.UpdateFactureRequest{Statut: &payee},
		&dto.Attachment{Filename: "juin.pdf", ContentType: "application/pdf", Size: int64(len(body))}, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, dto.StatutPayee, updated.Statut)
	assert.Equal(t, "factures/1717408860_juin.pdf", *updated.FichierPDF)

	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))
}

func TestFactureService_RejectsNonPDF(t *testing.T) {
	svc, repo, _, patientID := newTestService(t)

	_, err := svc.Create(context.Background(), dto.CreateFactureRequest{
		PatientID: patientID.String(),
		Montant:   amount(10),
		Date:      "2025-06-03",
	}, &dto.Attachment{Filename: "scan.png", ContentType: "image/png", Size: 10}, strings.NewReader("png"))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "fichier_pdf")
	assert.Empty(t, repo.rows)
}

func TestFactureService_DeleteUnknown(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
