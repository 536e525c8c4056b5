// Package payment implements the owner-compensation payment rail. Orders are
// created here; completion arrives asynchronously through the provider's
// webhook handled in internal/http.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the provider-side reference for a created payment.
type Order struct {
	OrderCode  string
	PaymentURL string
}

// Gateway creates external payment orders.
type Gateway interface {
	CreateOrder(ctx context.Context, contractID, payerID uuid.UUID, amount decimal.Decimal, memo string) (Order, error)
}

// LinkGateway issues pay-by-link orders: it mints an order code and a hosted
// checkout URL under the configured provider base URL.
type LinkGateway struct {
	baseURL string
}

func NewLinkGateway(baseURL string) *LinkGateway {
	return &LinkGateway{baseURL: strings.TrimRight(baseURL, "/")}
}

func (g *LinkGateway) CreateOrder(
	_ context.Context,
	contractID, payerID uuid.UUID,
	amount decimal.Decimal,
	memo string,
) (Order, error) {
	if amount.IsNegative() {
		return Order{}, fmt.Errorf("order amount must not be negative: %s", amount)
	}
	code := fmt.Sprintf("OCP-%s-%d", strings.ToUpper(contractID.String()[:8]), time.Now().UnixMilli())
	return Order{
		OrderCode:  code,
		PaymentURL: fmt.Sprintf("%s/pay/%s", g.baseURL, code),
	}, nil
}
