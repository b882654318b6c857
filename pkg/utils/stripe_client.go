package utils

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

var ErrPaymentsDisabled = errors.New("payments are not configured")

// CheckoutGateway is the part of Stripe Checkout the payment flow uses.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	Enabled() bool
}

type StripeClient struct {
	sessions *session.Client
}

// NewStripeClient returns a gateway backed by the Stripe API. An empty secret
// key yields a gateway that refuses every call.
func NewStripeClient(secretKey string) CheckoutGateway {
	if secretKey == "" {
		return disabledGateway{}
	}
	return &StripeClient{
		sessions: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (s *StripeClient) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return s.sessions.New(params)
}

func (s *StripeClient) GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return s.sessions.Get(id, params)
}

func (s *StripeClient) Enabled() bool { return true }

type disabledGateway struct{}

func (disabledGateway) CreateSession(context.Context, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, ErrPaymentsDisabled
}

func (disabledGateway) GetSession(context.Context, string) (*stripe.CheckoutSession, error) {
	return nil, ErrPaymentsDisabled
}

func (disabledGateway) Enabled() bool { return false }
