package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"checkinapp/internal/checkins/service"
	httputil "checkinapp/pkg/http"
	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"
)

type CheckInHandler struct {
	service service.CheckInService
	log     *logger.Logger
}

func NewCheckInHandler(service service.CheckInService, log *logger.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		log:     log,
	}
}

// CheckIn admits a participant into the session named in the path. A replay
// of an earlier check-in returns 200 with the original record; a fresh
// admission returns 201.
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if sessionID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "CheckIn", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var c model.CheckIn
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckIn", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	c.SessionID = sessionID

	result, err := h.service.CheckIn(r.Context(), &c)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckIn", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if result.AlreadyCheckedIn {
		if err := httputil.WriteSuccess(w, result); err != nil {
			h.log.Error("failed to write success response", "handler", "CheckIn", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "CheckIn", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckInHandler) GetBySession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if sessionID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetBySession", "operation", "WriteJSON", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetBySession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	checkIns, totalCount, err := h.service.GetBySession(r.Context(), sessionID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetBySession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, checkIns, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetBySession", "operation", "WritePaginated", "error", err)
	}
}

func (h *CheckInHandler) Register(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if sessionID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Register", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	reg.SessionID = sessionID

	if err := h.service.Register(r.Context(), &reg); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reg); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

// ConfirmRegistration flips a registration to confirmed so the participant
// can pass the registration gate.
func (h *CheckInHandler) ConfirmRegistration(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	registrationID := ps.ByName("regId")
	if sessionID == "" || registrationID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameters are required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "ConfirmRegistration", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := h.service.ConfirmRegistration(r.Context(), sessionID, registrationID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ConfirmRegistration", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CheckInHandler) GetRegistrations(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if sessionID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetRegistrations", "operation", "WriteJSON", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetRegistrations", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	registrations, err := h.service.GetRegistrationsBySession(r.Context(), sessionID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetRegistrations", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, registrations); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRegistrations", "operation", "WriteSuccess", "error", err)
	}
}
