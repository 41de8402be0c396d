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
)

// AssignmentRepository stores assignments. The partial unique index on
// (doctor_id, patient_id) over active rows is what makes concurrent adopts safe.
type AssignmentRepository struct {
	col *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{col: db.Collection(collectionAssignments)}
}

type assignmentDoc struct {
	ID         string     `bson:"_id"`
	DoctorID   string     `bson:"doctor_id"`
	PatientID  string     `bson:"patient_id"`
	Active     bool       `bson:"active"`
	CreatedAt  time.Time  `bson:"created_at"`
	ReleasedAt *time.Time `bson:"released_at,omitempty"`
}

func (r *AssignmentRepository) FindActive(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc assignmentDoc
	err := r.col.FindOne(ctx, bson.M{"doctor_id": doctorID, "patient_id": patientID, "active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find assignment: %w", classify(err))
	}
	return &domain.Assignment{
		ID:         doc.ID,
		DoctorID:   doc.DoctorID,
		PatientID:  doc.PatientID,
		Active:     doc.Active,
		CreatedAt:  doc.CreatedAt,
		ReleasedAt: doc.ReleasedAt,
	}, nil
}

func (r *AssignmentRepository) Insert(ctx context.Context, a *domain.Assignment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, assignmentDoc{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert assignment: %w", mapWriteError(err))
	}
	return nil
}

func (r *AssignmentRepository) Deactivate(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"doctor_id": doctorID, "patient_id": patientID, "active": true},
		bson.M{"$set": bson.M{"active": false, "released_at": at}},
	)
	if err != nil {
		return false, fmt.Errorf("deactivate assignment: %w", classify(err))
	}
	return res.ModifiedCount > 0, nil
}

// EnsureIndexes creates the active-pair unique index and a patient lookup index.
func (r *AssignmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "patient_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("ux_assignments_active_pair").
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
