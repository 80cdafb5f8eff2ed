package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/xrpbridge/bridge-api-service/docs"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Route("/api/bridge", func(r chi.Router) {
		r.Get("/quote", registerHandler(handlers.GetQuote))
		r.Post("/step1", registerHandler(handlers.CreateBridge))
		r.Post("/verify-transaction", registerHandler(handlers.VerifyTransaction))
		r.Post("/step3", registerHandler(handlers.ExecuteDistribution))
		r.Post("/restart/{transactionId}", registerHandler(handlers.RestartDistribution))
		r.Get("/transactions", registerHandler(handlers.GetTransactions))
		r.Get("/transactions/{transactionId}", registerHandler(handlers.GetTransaction))
		r.Get("/receipt/{transactionId}", registerHandler(handlers.GetReceipt))
		r.Get("/explorer/{transactionId}", registerHandler(handlers.GetExplorerLink))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
