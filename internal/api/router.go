package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"crew-ops-backend/config"
	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/assignment"
	"crew-ops-backend/internal/model"
	"crew-ops-backend/internal/mw"
	"crew-ops-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, svc *assignment.Service, cfg *config.Config, d Dispatcher) *gin.Engine {
	r := gin.Default()
	if cfg.Server.RequestIPHeader != "" {
		// Behind a proxy the client IP comes from a trusted header.
		r.TrustedPlatform = cfg.Server.RequestIPHeader
	}

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	responseCache := mw.NewResponseCache(cacheTTL)
	caching := responseCache.Middleware()

	handler := NewHandler(s, svc, responseCache, cfg, d)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	api := r.Group("/api")
	api.Use(rateLimiter)

	// Session and the push bootstrap key are reachable without a token.
	api.POST("/session", handler.Login)
	api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

	authed := api.Group("")
	authed.Use(mw.Auth(cfg.Auth.JWTSecret))
	{
		authed.GET("/assignments", caching, handler.ListAssignments)
		authed.GET("/assignments/:id", handler.GetAssignment)
		authed.POST("/assignments", handler.CreateAssignment)
		authed.POST("/assignments/coverage", handler.CreateCoverage)
		authed.POST("/assignments/:id/end", handler.EndAssignment)
		authed.GET("/workers/:id/conflict", handler.GetWorkerConflict)

		authed.GET("/audit", caching, handler.ListAuditLogs)

		authed.GET("/subscriptions", handler.GetSubscription)
		authed.PUT("/subscriptions", handler.PutSubscription)
		authed.DELETE("/subscriptions", handler.DeleteSubscription)

		registerCRUD(handler, authed, "/projects", "projects", caching, func(p *model.Project) error {
			if blank(p.Name) {
				return apperr.Validation("name", "a project name is required")
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			return nil
		})
		registerCRUD(handler, authed, "/positions", "positions", caching, func(p *model.Position) error {
			if blank(p.ProjectID) {
				return apperr.Validation("project_id", "a project is required")
			}
			if blank(p.Title) {
				return apperr.Validation("title", "a position title is required")
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			return nil
		})
		registerCRUD(handler, authed, "/workers", "workers", caching, func(w *model.Worker) error {
			if blank(w.FullName) {
				return apperr.Validation("full_name", "a worker name is required")
			}
			if w.ID == "" {
				w.ID = uuid.NewString()
			}
			return nil
		})
		registerCRUD(handler, authed, "/vendors", "vendors", caching, func(v *model.Vendor) error {
			if blank(v.Name) {
				return apperr.Validation("name", "a vendor name is required")
			}
			if v.ID == "" {
				v.ID = uuid.NewString()
			}
			return nil
		})
		registerCRUD(handler, authed, "/customers", "customers", caching, func(cu *model.Customer) error {
			if blank(cu.Name) {
				return apperr.Validation("name", "a customer name is required")
			}
			if cu.ID == "" {
				cu.ID = uuid.NewString()
			}
			return nil
		})
	}

	return r
}
