package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
