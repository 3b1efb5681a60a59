package models

import "time"

// User represents an operator of the back office.
// Includes username and password hash for authentication.
type User struct {
	UserID       string `db:"user_id"`
	CompanyID    string `db:"company_id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
