package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/store"
	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
)

// Service is a plain passthrough over the student visit log.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Create(ctx context.Context, rec *model.VisitRecord) (uuid.UUID, error) {
	id, err := s.store.Insert(ctx, store.CollectionRecords, store.Record{
		"studentId": store.Text(rec.StudentID),
		"lastName":  store.Text(rec.LastName),
		"firstName": store.Text(rec.FirstName),
		"concern":   store.Text(rec.Concern),
		"nurse":     store.Text(rec.Nurse),
		"dateTime":  store.Text(rec.DateTime),
		"email":     store.Text(rec.Email),
	})
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}
	return id, nil
}

func (s *Service) List(ctx context.Context) ([]model.VisitRecord, error) {
	recs, err := s.store.Find(ctx, store.CollectionRecords, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.VisitRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.VisitRecord{
			StudentID: rec.Canonical("studentId"),
			LastName:  rec.Canonical("lastName"),
			FirstName: rec.Canonical("firstName"),
			Concern:   rec.Canonical("concern"),
			Nurse:     rec.Canonical("nurse"),
			DateTime:  rec.Canonical("dateTime"),
			Email:     rec.Canonical("email"),
		})
	}
	return out, nil
}
