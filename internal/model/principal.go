package model

import "github.com/google/uuid"

// Principal identifies the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == "ADMIN"
}
