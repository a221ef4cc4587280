package repository

import (
	"context"
	"errors"

	chatdomain "medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/identity/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IdentityRepository definition the slice of the identity store the chat
// core consumes: user lookup and the one-shot relationship check done at
// room creation. Connection state is never re-derived afterwards.
type IdentityRepository interface {
	FindUser(ctx context.Context, userID string) (*domain.User, error)
	// VerifyConnection true only for a patient/doctor pair where the
	// patient's current-doctor list contains the doctor
	VerifyConnection(ctx context.Context, userA, userB string) (bool, error)
}

type identityRepository struct {
	users    *mongo.Collection
	patients *mongo.Collection
	doctors  *mongo.Collection
}

// NewMongoIdentityRepository create identity repository over the platform
// collections
func NewMongoIdentityRepository(db *mongo.Database) IdentityRepository {
	return &identityRepository{
		users:    db.Collection("users"),
		patients: db.Collection("patients"),
		doctors:  db.Collection("doctors"),
	}
}

// FindUser lookup one user
func (r *identityRepository) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, chatdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyConnection resolve which side is the patient, then check the
// doctor's profile id against the patient's current-doctor list
func (r *identityRepository) VerifyConnection(ctx context.Context, userA, userB string) (bool, error) {
	a, err := r.FindUser(ctx, userA)
	if err != nil {
		return false, err
	}
	b, err := r.FindUser(ctx, userB)
	if err != nil {
		return false, err
	}

	if a.Role == b.Role {
		return false, nil
	}

	patientUserID, doctorUserID := userA, userB
	if a.Role == string(chatdomain.RoleDoctor) {
		patientUserID, doctorUserID = userB, userA
	}

	var patient domain.PatientProfile
	if err := r.patients.FindOne(ctx, bson.M{"user_id": patientUserID}).Decode(&patient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	var doctor domain.DoctorProfile
	if err := r.doctors.FindOne(ctx, bson.M{"user_id": doctorUserID}).Decode(&doctor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	for _, d := range patient.CurrentDoctors {
		if d.DoctorID == doctor.ID {
			return true, nil
		}
	}
	return false, nil
}
