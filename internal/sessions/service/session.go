package service

import (
	"context"
	"errors"
	"sync"

	sessionserrors "checkinapp/internal/sessions/errors"
	"checkinapp/internal/sessions/repository"
	"checkinapp/internal/sessions/validator"
	"checkinapp/pkg/config"
	apperrors "checkinapp/pkg/errors"
	"checkinapp/pkg/model"
	"checkinapp/pkg/sanitizer"
)

type SessionService interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.Session, int64, error)
	Update(ctx context.Context, id string, updates *model.SessionUpdate) error
	Close(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
}

type sessionService struct {
	repo      repository.SessionRepository
	validator *validator.SessionValidator
	cfg       *config.Config
}

func NewSessionService(
	repo repository.SessionRepository,
	validator *validator.SessionValidator,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *sessionService) Create(ctx context.Context, session *model.Session) error {
	session.Name = sanitizer.NormalizeName(session.Name)
	s.applyDefaults(session)

	if err := s.validator.Validate(session); err != nil {
		s.cfg.Log.Warn("Session validation failed",
			"name", session.Name,
			"error", err,
		)
		return apperrors.Validation("Session validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to create session",
			"name", session.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create session", err)
	}

	s.cfg.Log.Info("Session created successfully",
		"id", session.ID,
		"name", session.Name,
		"start_time", session.StartTime,
		"capacity", session.Capacity,
	)
	return nil
}

// applyDefaults sets the fields a new session always starts with. A session
// is born scheduled with a zero admission counter; auto-end is on unless the
// caller turned it off explicitly through the update path.
func (s *sessionService) applyDefaults(session *model.Session) {
	session.Status = model.SessionScheduled
	session.CheckInsCount = 0
	session.AutoEnd = true
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Session", id)
		}
		if errors.Is(err, sessionserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid session ID format")
		}
		s.cfg.Log.Error("Failed to get session by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve session", err)
	}

	return session, nil
}

func (s *sessionService) GetAll(ctx context.Context, limit int, offset int) ([]*model.Session, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var sessions []*model.Session
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count sessions", "error", err)
			errCount = apperrors.Internal("Failed to count sessions", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		sessions, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all sessions",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve sessions", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return sessions, count, nil
}

func (s *sessionService) Update(ctx context.Context, id string, updates *model.SessionUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status.IsTerminal() {
		return apperrors.Conflict("Cannot update a session in a terminal state")
	}

	merged := s.mergeSessionUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Session validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return apperrors.Validation("Session validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update session",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update session", err)
	}

	s.cfg.Log.Info("Session updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *sessionService) mergeSessionUpdates(existing *model.Session, updates *model.SessionUpdate) *model.Session {
	merged := *existing

	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.CapacityEnforced != nil {
		merged.CapacityEnforced = *updates.CapacityEnforced
	}
	if updates.RequiresRegistration != nil {
		merged.RequiresRegistration = *updates.RequiresRegistration
	}
	if updates.AutoEnd != nil {
		merged.AutoEnd = *updates.AutoEnd
	}
	if updates.AutoOpenMinutesBefore != nil {
		merged.AutoOpenMinutesBefore = updates.AutoOpenMinutesBefore
	}
	if updates.AutoEndGraceMinutes != nil {
		merged.AutoEndGraceMinutes = updates.AutoEndGraceMinutes
	}
	if updates.LateThresholdMinutes != nil {
		merged.LateThresholdMinutes = updates.LateThresholdMinutes
	}

	return &merged
}

// Close ends check-in for a session by operator action. Only scheduled and
// open sessions can be closed; closing is terminal.
func (s *sessionService) Close(ctx context.Context, id string) error {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch session.Status {
	case model.SessionScheduled, model.SessionOpen:
	default:
		return apperrors.Conflict("Only scheduled or open sessions can be closed").WithDetails(map[string]any{
			"status": string(session.Status),
		})
	}

	moved, err := s.repo.UpdateStatus(ctx, id, session.Status, model.SessionClosed)
	if err != nil {
		s.cfg.Log.Error("Failed to close session", "id", id, "error", err)
		return apperrors.Internal("Failed to close session", err)
	}
	if !moved {
		// Lost a race with the scheduler or another operator.
		return apperrors.Conflict("Session changed state concurrently, please retry")
	}

	s.cfg.Log.Info("Session closed", "id", id, "previous_status", session.Status)
	return nil
}

// Cancel voids a session entirely. Allowed from any non-terminal state.
func (s *sessionService) Cancel(ctx context.Context, id string) error {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if session.Status.IsTerminal() {
		return apperrors.Conflict("Cannot cancel a session in a terminal state").WithDetails(map[string]any{
			"status": string(session.Status),
		})
	}

	moved, err := s.repo.UpdateStatus(ctx, id, session.Status, model.SessionCancelled)
	if err != nil {
		s.cfg.Log.Error("Failed to cancel session", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel session", err)
	}
	if !moved {
		return apperrors.Conflict("Session changed state concurrently, please retry")
	}

	s.cfg.Log.Info("Session cancelled", "id", id, "previous_status", session.Status)
	return nil
}
