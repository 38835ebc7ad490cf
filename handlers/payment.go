package handlers

import (
	"EstateHub/models"
	"EstateHub/tasks"
	"EstateHub/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type PaymentController struct {
	collection *mongo.Collection
	keyID      string
	keySecret  string
	runner     *tasks.Runner
	mailer     Mailer
	notifier   Notifier
	logger     *zap.Logger
}

func NewPaymentController(collection *mongo.Collection, keyID, keySecret string, runner *tasks.Runner, mailer Mailer, notifier Notifier, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		collection: collection,
		keyID:      keyID,
		keySecret:  keySecret,
		runner:     runner,
		mailer:     mailer,
		notifier:   notifier,
		logger:     logger.With(zap.String("component", "payments")),
	}
}

func (pc *PaymentController) configured() bool {
	return pc.keySecret != ""
}

func newOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
}

func (pc *PaymentController) CreateOrder(c echo.Context) error {
	if !pc.configured() {
		return errorJSON(c, http.StatusServiceUnavailable, "Payments are not configured")
	}
	var req models.CreateOrderRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}

	order := models.PaymentOrder{
		ID:         primitive.NewObjectID(),
		OrderID:    newOrderID(),
		UserID:     currentUserID(c),
		Email:      currentEmail(c),
		PropertyID: req.PropertyID,
		Amount:     req.Amount,
		Currency:   currency,
		Status:     models.PaymentCreated,
		CreatedAt:  time.Now(),
	}
	order.Receipt = "rcpt_" + order.ID.Hex()

	if _, err := pc.collection.InsertOne(c.Request().Context(), order); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to create order")
	}
	return c.JSON(http.StatusCreated, models.CreateOrderResponse{
		OrderID:  order.OrderID,
		KeyID:    pc.keyID,
		Amount:   order.Amount,
		Currency: order.Currency,
	})
}

func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	if !pc.configured() {
		return errorJSON(c, http.StatusServiceUnavailable, "Payments are not configured")
	}
	var req models.VerifyPaymentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	userID := currentUserID(c)
	filter := bson.M{"orderId": req.OrderID, "userId": userID}

	var order models.PaymentOrder
	if err := pc.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Order not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch order")
	}
	if order.Status == models.PaymentPaid {
		return errorJSON(c, http.StatusConflict, "Order is already paid")
	}

	if !utils.VerifyPaymentSignature(pc.keySecret, req.OrderID, req.PaymentID, req.Signature) {
		if _, err := pc.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": models.PaymentFailed}}); err != nil {
			pc.logger.Warn("marking order failed", zap.String("order", req.OrderID), zap.Error(err))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"verified": false, "error": "Payment verification failed"})
	}

	now := time.Now()
	_, err := pc.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":    models.PaymentPaid,
		"paymentId": req.PaymentID,
		"signature": req.Signature,
		"paidAt":    now,
	}})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to record payment")
	}

	if pc.notifier != nil {
		pc.notifier.Notify(userID, models.NotificationPayment, "Payment received",
			fmt.Sprintf("Payment of %s for %s was successful", utils.FormatRupees(order.Amount/100), order.PropertyID), order.PropertyID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"verified": true, "paymentId": req.PaymentID})
}

func (pc *PaymentController) findPayment(c echo.Context, paymentID string) (*models.PaymentOrder, error) {
	filter := bson.M{"paymentId": paymentID}
	if !models.IsStaffRole(currentRole(c)) {
		filter["userId"] = currentUserID(c)
	}
	var order models.PaymentOrder
	if err := pc.collection.FindOne(c.Request().Context(), filter).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (pc *PaymentController) FetchPaymentDetails(c echo.Context) error {
	var req models.PaymentLookupRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	order, err := pc.findPayment(c, req.PaymentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Payment not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch payment")
	}
	return c.JSON(http.StatusOK, order)
}

// SendInvoice answers 202 once the mail is queued; delivery failures only
// reach the log.
func (pc *PaymentController) SendInvoice(c echo.Context) error {
	var req models.PaymentLookupRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	order, err := pc.findPayment(c, req.PaymentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Payment not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch payment")
	}
	if order.Status != models.PaymentPaid {
		return errorJSON(c, http.StatusConflict, "Payment is not complete")
	}

	body := InvoiceText(*order)
	pc.runner.Go("send-invoice", func(ctx context.Context) error {
		return pc.mailer.Send(ctx, order.Email, "Your invoice "+order.Receipt, body)
	})
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Invoice queued"})
}

func InvoiceText(order models.PaymentOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt: %s\n", order.Receipt)
	fmt.Fprintf(&b, "Order: %s\n", order.OrderID)
	fmt.Fprintf(&b, "Payment: %s\n", order.PaymentID)
	fmt.Fprintf(&b, "Property: %s\n", order.PropertyID)
	fmt.Fprintf(&b, "Amount: %s (%s)\n", utils.FormatRupees(order.Amount/100), order.Currency)
	if order.PaidAt != nil {
		fmt.Fprintf(&b, "Paid at: %s\n", order.PaidAt.Format(time.RFC1123))
	}
	return b.String()
}
