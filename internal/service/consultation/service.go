package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/store"
	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
)

const fieldActionsTaken = "actionsTaken"

// Service ingests heterogeneous consultation payloads and always hands back
// the canonical shape, repairing malformed nested data on the read path.
type Service struct {
	store    store.Store
	validate *validator.Validate
}

func NewService(st store.Store) *Service {
	return &Service{
		store:    st,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, payload *model.Consultation) (uuid.UUID, error) {
	if err := s.validatePayload(payload); err != nil {
		return uuid.Nil, err
	}

	id, err := s.store.Insert(ctx, store.CollectionConsultations, recordFromConsultation(payload))
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}
	return id, nil
}

// Replace fully overwrites the stored record; it is not a partial merge.
func (s *Service) Replace(ctx context.Context, id string, payload *model.Consultation) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return apperrors.InvalidID("Invalid consultation ID format")
	}

	if err := s.validatePayload(payload); err != nil {
		return err
	}

	matched, err := s.store.ReplaceOne(ctx, store.CollectionConsultations, store.ByID(key),
		recordFromConsultation(payload))
	if err != nil {
		return apperrors.Internal(err)
	}
	if matched == 0 {
		return apperrors.NotFoundMsg(fmt.Sprintf("Consultation with ID %s not found", id))
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return apperrors.InvalidID("Invalid consultation ID format")
	}

	deleted, err := s.store.DeleteOne(ctx, store.CollectionConsultations, store.ByID(key))
	if err != nil {
		return apperrors.Internal(err)
	}
	if deleted == 0 {
		return apperrors.NotFoundMsg(fmt.Sprintf("Consultation with ID %s not found", id))
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]model.Consultation, error) {
	recs, err := s.store.Find(ctx, store.CollectionConsultations, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.Consultation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Normalize(rec))
	}
	return out, nil
}

// validatePayload reports every offending field, not just the first.
func (s *Service) validatePayload(payload *model.Consultation) error {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal(err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.Validation(fields)
}

// Normalize projects a stored record into the canonical consultation shape:
// absent fields get their documented defaults, identifiers and native
// timestamps render as text, and actionsTaken is decoded strictly with a
// total fallback to the all-false default.
func Normalize(rec store.Record) model.Consultation {
	return model.Consultation{
		ID:              rec.Canonical(store.FieldID),
		StudentID:       rec.Canonical("studentId"),
		FirstName:       rec.Canonical("firstName"),
		MiddleInitial:   rec.Canonical("middleInitial"),
		LastName:        rec.Canonical("lastName"),
		Age:             ageFromRecord(rec),
		Gender:          rec.Canonical("gender"),
		GradeSection:    rec.Canonical("gradeSection"),
		DateOfBirth:     rec.Canonical("dateOfBirth"),
		Address:         rec.Canonical("address"),
		ParentGuardian:  rec.Canonical("parentGuardian"),
		ContactNumber:   rec.Canonical("contactNumber"),
		Concern:         rec.Canonical("concern"),
		Nurse:           rec.Canonical("nurse"),
		DateTime:        rec.Canonical("dateTime"),
		Temperature:     rec.Canonical("temperature"),
		PulseRate:       rec.Canonical("pulseRate"),
		BloodPressure:   rec.Canonical("bloodPressure"),
		RespiratoryRate: rec.Canonical("respiratoryRate"),
		Assessment:      rec.Canonical("assessment"),
		Diagnosis:       rec.Canonical("diagnosis"),
		ActionsTaken:    actionsFromRecord(rec),
		Recommendations: rec.Canonical("recommendations"),
		NurseName:       rec.Canonical("nurseName"),
		NurseSignature:  rec.Canonical("nurseSignature"),
		NurseDate:       rec.Canonical("nurseDate"),
	}
}

func ageFromRecord(rec store.Record) int {
	if v, ok := rec["age"]; ok && v.Kind() == store.KindInt {
		return int(v.Int())
	}
	return 0
}

// actionsFromRecord attempts a strict decode of the nine-key sub-record. Any
// shape violation replaces the value wholesale with the default; there is no
// partial merge of repaired and stored data.
func actionsFromRecord(rec store.Record) model.ActionsTaken {
	v, ok := rec[fieldActionsTaken]
	if !ok || v.Kind() != store.KindMap {
		return model.ActionsTaken{}
	}

	m := v.Map()
	var out model.ActionsTaken
	ok = decodeBool(m, "restedInClinic", &out.RestedInClinic) &&
		decodeBool(m, "givenFirstAid", &out.GivenFirstAid) &&
		decodeBool(m, "administeredMedication", &out.AdministeredMedication) &&
		decodeText(m, "medicationDetails", &out.MedicationDetails) &&
		decodeBool(m, "sentHome", &out.SentHome) &&
		decodeBool(m, "referred", &out.Referred) &&
		decodeText(m, "referredTo", &out.ReferredTo) &&
		decodeBool(m, "others", &out.Others) &&
		decodeText(m, "othersDetails", &out.OthersDetails)
	if !ok {
		return model.ActionsTaken{}
	}
	return out
}

func decodeBool(m map[string]store.Value, key string, dst *bool) bool {
	v, ok := m[key]
	if !ok {
		return true
	}
	if v.Kind() != store.KindBool {
		return false
	}
	*dst = v.Bool()
	return true
}

func decodeText(m map[string]store.Value, key string, dst *string) bool {
	v, ok := m[key]
	if !ok {
		return true
	}
	if v.Kind() != store.KindText {
		return false
	}
	*dst = v.Text()
	return true
}

func recordFromConsultation(c *model.Consultation) store.Record {
	return store.Record{
		"studentId":       store.Text(c.StudentID),
		"firstName":       store.Text(c.FirstName),
		"middleInitial":   store.Text(c.MiddleInitial),
		"lastName":        store.Text(c.LastName),
		"age":             store.Int(int64(c.Age)),
		"gender":          store.Text(c.Gender),
		"gradeSection":    store.Text(c.GradeSection),
		"dateOfBirth":     store.Text(c.DateOfBirth),
		"address":         store.Text(c.Address),
		"parentGuardian":  store.Text(c.ParentGuardian),
		"contactNumber":   store.Text(c.ContactNumber),
		"concern":         store.Text(c.Concern),
		"nurse":           store.Text(c.Nurse),
		"dateTime":        store.Text(c.DateTime),
		"temperature":     store.Text(c.Temperature),
		"pulseRate":       store.Text(c.PulseRate),
		"bloodPressure":   store.Text(c.BloodPressure),
		"respiratoryRate": store.Text(c.RespiratoryRate),
		"assessment":      store.Text(c.Assessment),
		"diagnosis":       store.Text(c.Diagnosis),
		fieldActionsTaken: store.Map(map[string]store.Value{
			"restedInClinic":         store.Bool(c.ActionsTaken.RestedInClinic),
			"givenFirstAid":          store.Bool(c.ActionsTaken.GivenFirstAid),
			"administeredMedication": store.Bool(c.ActionsTaken.AdministeredMedication),
			"medicationDetails":      store.Text(c.ActionsTaken.MedicationDetails),
			"sentHome":               store.Bool(c.ActionsTaken.SentHome),
			"referred":               store.Bool(c.ActionsTaken.Referred),
			"referredTo":             store.Text(c.ActionsTaken.ReferredTo),
			"others":                 store.Bool(c.ActionsTaken.Others),
			"othersDetails":          store.Text(c.ActionsTaken.OthersDetails),
		}),
		"recommendations": store.Text(c.Recommendations),
		"nurseName":       store.Text(c.NurseName),
		"nurseSignature":  store.Text(c.NurseSignature),
		"nurseDate":       store.Text(c.NurseDate),
	}
}
