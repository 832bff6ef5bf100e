package model

import "time"

// Roles recognised by the service.  Employees run the floor (sessions,
// bookings, battles); owners additionally see management, analytics and
// report exports.
const (
	RoleEmployee = "EMPLOYEE"
	RoleOwner    = "OWNER"
)

// User is a staff account.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – login identifier, unique, lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Role         – EMPLOYEE or OWNER.
//  CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
