// Package payments builds external payment references for finalized orders.
package payments

import (
	"net/url"
	"strings"

	"github.com/angelmondragon/atelier-bot/pkg/money"
)

const payPalMeBase = "https://www.paypal.me/"

// LinkBuilder returns a payment reference for an order total, or false when payments are not configured.
type LinkBuilder interface {
	Link(orderID int64, totalCents int64) (string, bool)
}

// PayPalMe builds PayPal.me links for a configured handle.
type PayPalMe struct {
	handle string
}

// NewPayPalMe accepts a bare handle; an empty handle disables payment links.
func NewPayPalMe(handle string) PayPalMe {
	return PayPalMe{handle: strings.Trim(strings.TrimSpace(handle), "/")}
}

func (p PayPalMe) Configured() bool {
	return p.handle != ""
}

func (p PayPalMe) Link(_ int64, totalCents int64) (string, bool) {
	if !p.Configured() {
		return "", false
	}
	return payPalMeBase + url.PathEscape(p.handle) + "/" + money.Amount(totalCents), true
}
