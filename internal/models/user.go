package models

import (
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names accepted by the portal.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// User is a portal account. Accounts created through Google sign-in carry no
// password hash.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"`
	StudentID    string             `bson:"studentId,omitempty" json:"studentId,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// ParseID converts a hex path parameter into an ObjectID. Malformed ids are
// reported as not found.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.New(apperrors.ErrNotFound, "Not found")
	}
	return id, nil
}
