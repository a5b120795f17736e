package payments

import (
	"context"
	"os"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Client drives Stripe PaymentIntents in escrow terms: a manual-capture
// intent is an open hold on a reserver's funds, captured when escrow pays
// out to the ride owner and released when it refunds.
type Client struct {
	currency string
}

// NewClient initializes the stripe client with the STRIPE_API_KEY env var.
func NewClient(currency string) *Client {
	stripe.Key = os.Getenv("STRIPE_API_KEY")
	return &Client{currency: currency}
}

// OpenHold places a manual-capture hold matching funds entering escrow and
// returns the hold id.
func (c *Client) OpenHold(ctx context.Context, amount int64, reserver string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(c.currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.AddMetadata("reserver", reserver)
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// CapturePayout finalizes a hold whose escrow settled to the ride owner.
func (c *Client) CapturePayout(ctx context.Context, holdID string) error {
	_, err := paymentintent.Capture(holdID, nil)
	return err
}

// ReleaseHold voids a hold whose escrow was refunded.
func (c *Client) ReleaseHold(ctx context.Context, holdID string) error {
	_, err := paymentintent.Cancel(holdID, nil)
	return err
}
