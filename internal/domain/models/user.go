package models

import "time"

// UserRole controls access to administrative endpoints.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleGalponero UserRole = "GALPONERO"
)

// UserStatus follows the registration lifecycle: new accounts wait in
// PENDIENTE until an admin approves them into ACTIVO.
type UserStatus string

const (
	UserPending  UserStatus = "PENDIENTE"
	UserActive   UserStatus = "ACTIVO"
	UserInactive UserStatus = "INACTIVO"
	UserRejected UserStatus = "RECHAZADO"
)

// User is an application account stored in the USER collection.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Role         UserRole   `bson:"role" json:"role"`
	Status       UserStatus `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}

// Session identifies the authenticated caller of an operation. It is passed
// explicitly into every service call instead of living in ambient state.
type Session struct {
	UserID string
	Name   string
	Role   UserRole
}
