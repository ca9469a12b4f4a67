package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/athena-hd/athena-rewards/internal/wallet"
)

// RegisterWalletRoutes wires the token wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallet/init", h.Init)
	r.Get("/wallet/:userID", h.Get)
	r.Get("/wallet/:userID/stats", h.Stats)
	r.Get("/wallet/:userID/transactions", h.Transactions)
	r.Get("/wallet/:userID/payments", h.Payments)
	r.Get("/wallet/:userID/errors", h.Errors)
	r.Post("/wallet/:userID/earn", h.Earn)
	r.Post("/wallet/:userID/spend", h.Spend)
	r.Post("/wallet/:userID/payments", h.Pay)
	r.Post("/wallet/:userID/stake", h.Stake)
	r.Post("/wallet/:userID/unstake", h.Unstake)
	r.Post("/wallet/:userID/transfer", h.Transfer)
}
