package queries

import (
	"context"
	"encoding/json"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"

	"github.com/google/uuid"
)

var PatientFileQueries = struct {
	SetPhoto         string
	AppendDocument   string
	LockDocuments    string
	ReplaceDocuments string
}{
	/**
	 * Remplace la photo et retourne l'ancienne clé
	 * Paramètres: $1 = patient_id, $2 = clé de stockage
	 */
	SetPhoto: `
		UPDATE patients p SET photo = $2, updated_at = now()
		FROM (SELECT id, photo FROM patients WHERE id = $1 FOR UPDATE) old
		WHERE p.id = old.id
		RETURNING old.photo
	`,

	AppendDocument: `
		UPDATE patients SET documents = documents || jsonb_build_array($2::jsonb), updated_at = now()
		WHERE id = $1
	`,

	LockDocuments: `SELECT documents FROM patients WHERE id = $1 FOR UPDATE`,

	ReplaceDocuments: `UPDATE patients SET documents = $2::jsonb, updated_at = now() WHERE id = $1`,
}

// SetPhoto found = false si le patient n'existe pas
func (r *PatientRepository) SetPhoto(ctx context.Context, id uuid.UUID, key string) (previous *string, found bool, err error) {
	err = r.db.QueryRow(ctx, PatientFileQueries.SetPhoto, id, key).Scan(&previous)
	if postgres.IsNoRows(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return previous, true, nil
}

func (r *PatientRepository) AddDocument(ctx context.Context, id uuid.UUID, doc dto.Document) (bool, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("sérialisation document: %w", err)
	}
	affected, err := r.db.Exec(ctx, PatientFileQueries.AppendDocument, id, string(raw))
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RemoveDocument retire le document docID et le retourne, nil s'il n'existe pas
func (r *PatientRepository) RemoveDocument(ctx context.Context, id, docID uuid.UUID) (*dto.Document, error) {
	var removed *dto.Document
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var documents []dto.Document
		if err := tx.QueryRow(ctx, PatientFileQueries.LockDocuments, id).Scan(&documents); err != nil {
			if postgres.IsNoRows(err) {
				return nil
			}
			return err
		}

		kept := make([]dto.Document, 0, len(documents))
		for i := range documents {
			if documents[i].ID == docID {
				removed = &documents[i]
				continue
			}
			kept = append(kept, documents[i])
		}
		if removed == nil {
			return nil
		}

		raw, err := json.Marshal(kept)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, PatientFileQueries.ReplaceDocuments, id, string(raw))
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
