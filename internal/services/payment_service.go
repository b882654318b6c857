package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	dbm "tripdaddy/internal/models/db_models"
	"tripdaddy/internal/models/response_models"
	"tripdaddy/internal/repositories"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/utils"
)

const (
	providerStripe               = "stripe"
	eventCheckoutSessionComplete = "checkout.session.completed"
	tripIDMetadataKey            = "trip_id"
)

type PaymentServiceInterface interface {
	CreateCheckout(ctx context.Context, tripID string) (*response_models.CheckoutResponse, error)
	// VerifyPayment confirms the checkout session with Stripe and unlocks the
	// trip. Without payments configured a missing session id is accepted so
	// local setups can unlock trips.
	VerifyPayment(ctx context.Context, tripID, sessionID string) (*response_models.UnlockResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	gateway   utils.CheckoutGateway
	txnRepo   repositories.ITransactionRepository
	tripRepo  repositories.ITripRepository
	itinerary ItineraryServiceInterface
	cfg       config.PaymentConfig
	clientURL string
	log       *zap.Logger
}

func NewPaymentService(
	gateway utils.CheckoutGateway,
	txnRepo repositories.ITransactionRepository,
	tripRepo repositories.ITripRepository,
	itinerary ItineraryServiceInterface,
	cfg *config.Config,
	log *zap.Logger,
) PaymentServiceInterface {
	return &paymentService{
		gateway:   gateway,
		txnRepo:   txnRepo,
		tripRepo:  tripRepo,
		itinerary: itinerary,
		cfg:       cfg.Payment,
		clientURL: cfg.ClientURL,
		log:       log.Named("payment"),
	}
}

func (p *paymentService) CreateCheckout(ctx context.Context, tripID string) (*response_models.CheckoutResponse, error) {
	if !p.gateway.Enabled() {
		return nil, utils.ErrPaymentsDisabled
	}
	trip, err := p.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if trip == nil {
		return nil, utils.ErrTripNotFound
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Full Itinerary: " + trip.Destination),
					},
					UnitAmount: stripe.Int64(p.cfg.UnlockPriceMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/?success=true&session_id={CHECKOUT_SESSION_ID}&trip_id=%s", p.clientURL, tripID)),
		CancelURL:         stripe.String(p.clientURL + "/?canceled=true"),
		ClientReferenceID: stripe.String(tripID),
	}
	params.AddMetadata(tripIDMetadataKey, tripID)
	if trip.Email != nil && *trip.Email != "" {
		params.CustomerEmail = stripe.String(*trip.Email)
	}

	sess, err := p.gateway.CreateSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", utils.ErrPaymentProvider, err)
	}

	meta, _ := json.Marshal(map[string]any{"destination": trip.Destination, "checkout_url": sess.URL})
	txn := &dbm.Transaction{
		TripID:        tripID,
		AmountMinor:   p.cfg.UnlockPriceMinor,
		Currency:      strings.ToUpper(p.cfg.Currency),
		Status:        dbm.TxnStatusPending,
		Provider:      providerStripe,
		ProviderTxnID: sess.ID,
		CustomerEmail: trip.Email,
		Metadata:      datatypes.JSON(meta),
	}
	if err := p.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: create transaction: %v", utils.ErrDatabaseError, err)
	}

	p.log.Info("checkout session created", zap.String("trip_id", tripID), zap.String("session_id", sess.ID))
	return &response_models.CheckoutResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

func (p *paymentService) VerifyPayment(ctx context.Context, tripID, sessionID string) (*response_models.UnlockResponse, error) {
	if sessionID == "" {
		if p.gateway.Enabled() {
			return nil, fmt.Errorf("%w: sessionId is required", utils.ErrPaymentNotCompleted)
		}
		p.log.Warn("payments disabled, unlocking without checkout", zap.String("trip_id", tripID))
		return p.itinerary.Unlock(ctx, tripID)
	}

	sess, err := p.gateway.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrPaymentsDisabled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: retrieve checkout session: %v", utils.ErrPaymentProvider, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, utils.ErrPaymentNotCompleted
	}
	if sessionTripID(sess) != tripID {
		return nil, fmt.Errorf("%w: session does not belong to this trip", utils.ErrPaymentNotCompleted)
	}

	if err := p.recordPaid(ctx, sess); err != nil {
		return nil, err
	}
	return p.itinerary.Unlock(ctx, tripID)
}

func (p *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if p.cfg.StripeWebhookSecret == "" {
		return utils.ErrPaymentsDisabled
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: webhook signature: %v", utils.ErrInvalidInput, err)
	}

	if string(event.Type) != eventCheckoutSessionComplete {
		p.log.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("%w: checkout session payload: %v", utils.ErrInvalidInput, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		p.log.Info("checkout completed without payment", zap.String("session_id", sess.ID))
		return nil
	}
	tripID := sessionTripID(&sess)
	if tripID == "" {
		p.log.Warn("checkout session has no trip reference", zap.String("session_id", sess.ID))
		return nil
	}

	if err := p.recordPaid(ctx, &sess); err != nil {
		return err
	}
	_, err = p.itinerary.Unlock(ctx, tripID)
	return err
}

// recordPaid moves the stored transaction to paid. A session without a
// pending transaction (created elsewhere, or a lost write) gets one recorded.
func (p *paymentService) recordPaid(ctx context.Context, sess *stripe.CheckoutSession) error {
	now := utils.NowUnixSeconds()
	changed, err := p.txnRepo.MarkPaid(ctx, sess.ID, now)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if changed {
		return nil
	}

	existing, err := p.txnRepo.GetByProviderTxnID(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil {
		return nil
	}

	txn := &dbm.Transaction{
		TripID:        sessionTripID(sess),
		AmountMinor:   sess.AmountTotal,
		Currency:      strings.ToUpper(string(sess.Currency)),
		Status:        dbm.TxnStatusPaid,
		Provider:      providerStripe,
		ProviderTxnID: sess.ID,
		PaidAt:        &now,
		Metadata:      datatypes.JSON(`{}`),
	}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email := sess.CustomerDetails.Email
		txn.CustomerEmail = &email
	}
	if err := p.txnRepo.Create(ctx, txn); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

func sessionTripID(sess *stripe.CheckoutSession) string {
	if sess.ClientReferenceID != "" {
		return sess.ClientReferenceID
	}
	return sess.Metadata[tripIDMetadataKey]
}
