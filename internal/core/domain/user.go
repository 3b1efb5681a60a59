package domain

import "time"

// User represents a back-office operator. Users belong to exactly one company
// and every account/entry they touch is scoped to it.
type User struct {
	UserID    string `json:"userID"` // Primary Key (UUID)
	CompanyID string `json:"companyID"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
