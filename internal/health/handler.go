package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	"checkinapp/internal/locks"
	httputil "checkinapp/pkg/http"
	"checkinapp/pkg/logger"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	LockStore string `json:"lock_store,omitempty"`
}

type Handler struct {
	mongoClient *mongo.Client
	lockMgr     *locks.Manager
	log         *logger.Logger
}

func NewHandler(mongoClient *mongo.Client, lockMgr *locks.Manager, log *logger.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		lockMgr:     lockMgr,
		log:         log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready reports dependency health. A degraded lock store does not fail
// readiness: the service keeps admitting in degraded mode, so the response
// only flags it for operators.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unavailable",
			Database: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	lockStore := "ok"
	if h.lockMgr != nil && h.lockMgr.Degraded(ctx) {
		lockStore = "degraded"
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Database:  "ok",
		LockStore: lockStore,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
