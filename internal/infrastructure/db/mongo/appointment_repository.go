package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// AppointmentRepository stores appointments. Partial index filters cannot
// express "state != cancelled", so each document carries holds_slot and the
// unique (doctor_id, slot) index is restricted to holds_slot: true.
type AppointmentRepository struct {
	col *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{col: db.Collection(collectionAppointments)}
}

type appointmentDoc struct {
	ID        string                `bson:"_id"`
	DoctorID  string                `bson:"doctor_id"`
	PatientID string                `bson:"patient_id"`
	Slot      time.Time             `bson:"slot"`
	State     string                `bson:"state"`
	HoldsSlot bool                  `bson:"holds_slot"`
	Reason    string                `bson:"reason"`
	History   []domain.HistoryEntry `bson:"history"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

func (d appointmentDoc) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:        d.ID,
		DoctorID:  d.DoctorID,
		PatientID: d.PatientID,
		Slot:      d.Slot.UTC(),
		State:     domain.AppointmentState(d.State),
		Reason:    d.Reason,
		History:   d.History,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AppointmentRepository) FindActiveBySlot(ctx context.Context, doctorID string, slot time.Time) (*domain.Appointment, error) {
	return r.findOne(ctx, bson.M{"doctor_id": doctorID, "slot": slot, "holds_slot": true})
}

func (r *AppointmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc appointmentDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", classify(err))
	}
	return doc.toDomain(), nil
}

// Insert writes a new appointment document.
func (r *AppointmentRepository) Insert(ctx context.Context, a *domain.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, appointmentDoc{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Slot:      a.Slot,
		State:     string(a.State),
		HoldsSlot: a.State.HoldsSlot(),
		Reason:    a.Reason,
		History:   a.History,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert appointment: %w", mapWriteError(err))
	}
	return nil
}

// ApplyTransition sets the new state and appends the history entry in one
// findAndModify, guarded by the state the caller observed.
func (r *AppointmentRepository) ApplyTransition(ctx context.Context, u ports.TransitionUpdate) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"state":      string(u.Entry.State),
		"holds_slot": u.Entry.State.HoldsSlot(),
		"updated_at": u.Entry.At,
	}
	if u.Slot != nil {
		set["slot"] = *u.Slot
	}

	filter := bson.M{"_id": u.AppointmentID, "state": string(u.From)}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": u.Entry},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc appointmentDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("apply transition: %w", mapWriteError(err))
	}

	// Nothing matched: the appointment is gone or its state moved on.
	if _, ferr := r.FindByID(ctx, u.AppointmentID); ferr != nil {
		return nil, ferr
	}
	return nil, fmt.Errorf("%w: state changed concurrently", domain.ErrInvalidTransition)
}

// EnsureIndexes creates the slot uniqueness index and lookup indexes.
func (r *AppointmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "slot", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("ux_appointments_doctor_slot").
				SetPartialFilterExpression(bson.M{"holds_slot": true}),
		},
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
