package discovery

import (
	"EstateHub/models"
	"EstateHub/session"
	"EstateHub/tasks"
	"EstateHub/utils"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrPaymentCancelled = errors.New("payment cancelled")

type PaymentsAPI interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) error
	SendInvoice(ctx context.Context, paymentID string) error
}

// PaymentGateway collects the money for an order and hands back the
// gateway's signed confirmation.
type PaymentGateway interface {
	Collect(ctx context.Context, order models.CreateOrderResponse) (models.VerifyPaymentRequest, error)
}

type Receipt struct {
	OrderID   string
	PaymentID string
	Amount    int64
	Currency  string
}

type Checkout struct {
	api      PaymentsAPI
	gateway  PaymentGateway
	runner   *tasks.Runner
	session  session.Reader
	notifier Notifier
	logger   *zap.Logger
}

func NewCheckout(api PaymentsAPI, gateway PaymentGateway, runner *tasks.Runner, reader session.Reader, notifier Notifier, logger *zap.Logger) *Checkout {
	return &Checkout{
		api:      api,
		gateway:  gateway,
		runner:   runner,
		session:  reader,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "checkout")),
	}
}

// Pay charges amount paise for l. The invoice mail is sent in the
// background and its outcome is only logged.
func (c *Checkout) Pay(ctx context.Context, l Listing, amount int64) (*Receipt, error) {
	if c.session.State().Session == nil {
		return nil, ErrNotAuthenticated
	}

	order, err := c.api.CreateOrder(ctx, models.CreateOrderRequest{PropertyID: l.Key(), Amount: amount, Currency: "INR"})
	if err != nil {
		c.logger.Warn("creating order failed", zap.String("property", l.Key()), zap.Error(err))
		notify(c.notifier, LevelError, "Could not start the payment.")
		return nil, err
	}

	confirmation, err := c.gateway.Collect(ctx, *order)
	if err != nil {
		c.logger.Info("payment not completed", zap.String("order", order.OrderID), zap.Error(err))
		notify(c.notifier, LevelError, "Payment was not completed.")
		return nil, fmt.Errorf("%w: %v", ErrPaymentCancelled, err)
	}
	confirmation.OrderID = order.OrderID

	if err := c.api.VerifyPayment(ctx, confirmation); err != nil {
		c.logger.Warn("payment verification failed", zap.String("order", order.OrderID), zap.Error(err))
		notify(c.notifier, LevelError, "Payment verification failed.")
		return nil, err
	}

	paymentID := confirmation.PaymentID
	c.runner.Go("send-invoice", func(ctx context.Context) error {
		return c.api.SendInvoice(ctx, paymentID)
	})

	notify(c.notifier, LevelSuccess, "Payment of "+utils.FormatRupees(order.Amount/100)+" successful")
	return &Receipt{OrderID: order.OrderID, PaymentID: paymentID, Amount: order.Amount, Currency: order.Currency}, nil
}
