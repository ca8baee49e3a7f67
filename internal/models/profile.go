package models

import "time"

// ProfileRole represents the application-level role on a profile.
type ProfileRole string

const (
	ProfileRoleStudent    ProfileRole = "student"
	ProfileRoleInstructor ProfileRole = "instructor"
)

// Profile is the application record provisioned once per user on first
// sign-in. Uniqueness per user_id is enforced by the database.
type Profile struct {
	ID        string      `db:"id" json:"id"`
	UserID    string      `db:"user_id" json:"user_id"`
	FullName  string      `db:"full_name" json:"full_name"`
	Role      ProfileRole `db:"role" json:"role"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
