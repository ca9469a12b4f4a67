package wallet

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/athena-hd/athena-rewards/internal/faults"
)

// Handler exposes wallet operations over HTTP. Every failure is routed
// through the faults handler and returned as the structured error envelope
// the error-display contract expects.
type Handler struct {
	service *Service
	faults  *faults.Handler
}

// NewHandler constructs a wallet handler.
func NewHandler(service *Service, faultHandler *faults.Handler) *Handler {
	return &Handler{service: service, faults: faultHandler}
}

type initRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
}

type amountRequest struct {
	Amount      float64        `json:"amount"`
	Description string         `json:"description"`
	ServiceType string         `json:"service_type"`
	Metadata    map[string]any `json:"metadata"`
}

type paymentRequest struct {
	Amount      float64 `json:"amount"`
	ServiceType string  `json:"service_type"`
	ServiceID   string  `json:"service_id"`
	Description string  `json:"description"`
}

type stakeRequest struct {
	Amount       float64 `json:"amount"`
	DurationDays int     `json:"duration_days"`
}

type transferRequest struct {
	Amount      float64 `json:"amount"`
	RecipientID string  `json:"recipient_id"`
	Description string  `json:"description"`
}

// Init provisions a wallet, deriving the category from the user id when the
// caller does not pass one.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, faults.Wrap(faults.ValidationError, err), &faults.Context{Operation: "initialize"})
	}
	if req.UserID == "" {
		return h.fail(c, faults.New(faults.ValidationError, "user_id is required"), &faults.Context{Operation: "initialize"})
	}

	w, err := h.service.Initialize(c.UserContext(), req.UserID, UserCategory(req.Category))
	if err != nil {
		return h.fail(c, err, &faults.Context{UserID: req.UserID, Operation: "initialize"})
	}
	return ok(c, http.StatusCreated, w)
}

// Get returns the wallet record, provisioning one when absent.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID := c.Params("userID")
	w, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, &faults.Context{UserID: userID, Operation: "get_wallet"})
	}
	return ok(c, http.StatusOK, w)
}

// Stats returns the read-only wallet aggregate with the derived tier.
func (h *Handler) Stats(c *fiber.Ctx) error {
	userID := c.Params("userID")
	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, &faults.Context{UserID: userID, Operation: "wallet_stats"})
	}
	return ok(c, http.StatusOK, stats)
}

// Transactions returns the ledger log, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	userID := c.Params("userID")
	limit, _ := strconv.Atoi(c.Query("limit"))
	txns, err := h.service.Transactions(c.UserContext(), userID, limit)
	if err != nil {
		return h.fail(c, err, &faults.Context{UserID: userID, Operation: "list_transactions"})
	}
	return ok(c, http.StatusOK, txns)
}

// Payments returns the payment log, newest first.
func (h *Handler) Payments(c *fiber.Ctx) error {
	userID := c.Params("userID")
	payments, err := h.service.Payments(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, &faults.Context{UserID: userID, Operation: "list_payments"})
	}
	return ok(c, http.StatusOK, payments)
}

// Earn credits tokens.
func (h *Handler) Earn(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "earn"}

	var req amountRequest
	if err := parseAmount(c, &req); err != nil {
		return h.fail(c, err, fctx)
	}
	fctx.Amount = req.Amount
	fctx.ServiceType = req.ServiceType

	txn, err := h.service.Earn(c.UserContext(), userID, req.Amount, req.Description, req.ServiceType, req.Metadata)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, txn)
}

// Spend debits tokens.
func (h *Handler) Spend(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "spend"}

	var req amountRequest
	if err := parseAmount(c, &req); err != nil {
		return h.fail(c, err, fctx)
	}
	fctx.Amount = req.Amount
	fctx.ServiceType = req.ServiceType

	txn, err := h.service.Spend(c.UserContext(), userID, req.Amount, req.Description, req.ServiceType, req.Metadata)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, txn)
}

// Pay processes a service checkout.
func (h *Handler) Pay(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "process_payment"}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, faults.Wrap(faults.ValidationError, err), fctx)
	}
	if req.Amount <= 0 {
		return h.fail(c, faults.New(faults.ValidationError, "amount must be positive"), fctx)
	}
	if req.ServiceType == "" || req.ServiceID == "" {
		return h.fail(c, faults.New(faults.ValidationError, "service_type and service_id are required"), fctx)
	}
	fctx.Amount = req.Amount
	fctx.ServiceType = req.ServiceType

	payment, err := h.service.ProcessPayment(c.UserContext(), userID, req.Amount, req.ServiceType, req.ServiceID, req.Description)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, payment)
}

// Stake locks tokens.
func (h *Handler) Stake(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "stake"}

	var req stakeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, faults.Wrap(faults.ValidationError, err), fctx)
	}
	if req.Amount <= 0 {
		return h.fail(c, faults.New(faults.ValidationError, "amount must be positive"), fctx)
	}
	fctx.Amount = req.Amount

	txn, err := h.service.Stake(c.UserContext(), userID, req.Amount, req.DurationDays)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, txn)
}

// Unstake releases locked tokens plus the fixed-window reward.
func (h *Handler) Unstake(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "unstake"}

	var req stakeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, faults.Wrap(faults.ValidationError, err), fctx)
	}
	if req.Amount <= 0 {
		return h.fail(c, faults.New(faults.ValidationError, "amount must be positive"), fctx)
	}
	fctx.Amount = req.Amount

	txn, err := h.service.Unstake(c.UserContext(), userID, req.Amount)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, txn)
}

// Transfer debits the sender toward a recipient id.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	userID := c.Params("userID")
	fctx := &faults.Context{UserID: userID, Operation: "transfer"}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, faults.Wrap(faults.ValidationError, err), fctx)
	}
	if req.Amount <= 0 {
		return h.fail(c, faults.New(faults.ValidationError, "amount must be positive"), fctx)
	}
	if req.RecipientID == "" {
		return h.fail(c, faults.New(faults.ValidationError, "recipient_id is required"), fctx)
	}
	fctx.Amount = req.Amount

	txn, err := h.service.Transfer(c.UserContext(), userID, req.Amount, req.RecipientID, req.Description)
	if err != nil {
		return h.fail(c, err, fctx)
	}
	return ok(c, http.StatusCreated, txn)
}

// Errors returns the user's recent classified failures.
func (h *Handler) Errors(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, h.faults.History(c.Params("userID")))
}

func parseAmount(c *fiber.Ctx, req *amountRequest) error {
	if err := c.BodyParser(req); err != nil {
		return faults.Wrap(faults.ValidationError, err)
	}
	if req.Amount <= 0 {
		return faults.New(faults.ValidationError, "amount must be positive")
	}
	return nil
}

func (h *Handler) fail(c *fiber.Ctx, err error, fctx *faults.Context) error {
	te := h.faults.Process(err, fctx)
	return c.Status(statusFor(te.Type)).JSON(fiber.Map{
		"success": false,
		"error":   te,
	})
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func statusFor(t faults.Type) int {
	switch t {
	case faults.InsufficientBalance, faults.ValidationError:
		return http.StatusBadRequest
	case faults.ConcurrentModification:
		return http.StatusConflict
	case faults.ServiceUnavailable, faults.DatabaseConnection:
		return http.StatusServiceUnavailable
	case faults.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
