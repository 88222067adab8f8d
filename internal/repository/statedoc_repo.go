package repository

import (
	"context"
	"errors"

	"brewpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDocumentMissing is returned by Get when the organization has no document
// of the requested kind yet. Callers fall back to the cached copy (or an empty
// default) and self-heal by writing that fallback back.
var ErrDocumentMissing = errors.New("state document missing")

// StateDocRepository persists the per-organization JSON state documents.
type StateDocRepository interface {
	Get(ctx context.Context, orgID uuid.UUID, kind string) ([]byte, error)
	Put(ctx context.Context, orgID uuid.UUID, kind string, data []byte) error
}

type stateDocRepo struct{ db *gorm.DB }

func NewStateDocRepository(db *gorm.DB) StateDocRepository { return &stateDocRepo{db: db} }

func (r *stateDocRepo) Get(ctx context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	var doc model.StateDocument
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND kind = ?", orgID, kind).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentMissing
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Put is an idempotent upsert keyed by (org, kind), implemented as
// read-check-then-update-or-insert inside a transaction. An explicit
// SELECT-then-UPDATE/INSERT is used instead of ON CONFLICT because not every
// deployment's schema carries the composite constraint ON CONFLICT would need,
// and a misaddressed upsert fails in ways that are hard to tell apart from a
// lost write.
func (r *stateDocRepo) Put(ctx context.Context, orgID uuid.UUID, kind string, data []byte) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.StateDocument
		err := tx.Where("org_id = ? AND kind = ?", orgID, kind).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.StateDocument{
				OrgID: orgID,
				Kind:  kind,
				Data:  data,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Update("data", data).Error
	})
}
