package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	checkinerrors "checkinapp/internal/checkins/errors"
	"checkinapp/internal/checkins/repository"
	"checkinapp/internal/checkins/validator"
	"checkinapp/internal/events"
	"checkinapp/internal/locks"
	sessionserrors "checkinapp/internal/sessions/errors"
	"checkinapp/internal/sessions/lifecycle"
	sessionsrepo "checkinapp/internal/sessions/repository"
	"checkinapp/pkg/config"
	apperrors "checkinapp/pkg/errors"
	"checkinapp/pkg/model"
	"checkinapp/pkg/sanitizer"
)

// CheckInResult is the admission outcome for a successful or idempotent
// check-in. AlreadyCheckedIn marks an idempotent replay: Record then carries
// the original check-in, not a new one, nothing was written, and Code is set
// to ALREADY_CHECKED_IN so clients can tell a replay apart without treating
// it as an error.
type CheckInResult struct {
	Record           *model.CheckIn `json:"record"`
	AlreadyCheckedIn bool           `json:"already_checked_in"`
	Code             string         `json:"code,omitempty"`
}

func replayResult(record *model.CheckIn) *CheckInResult {
	return &CheckInResult{
		Record:           record,
		AlreadyCheckedIn: true,
		Code:             apperrors.CodeAlreadyCheckedIn,
	}
}

type CheckInService interface {
	CheckIn(ctx context.Context, c *model.CheckIn) (*CheckInResult, error)
	GetBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.CheckIn, int64, error)
	Register(ctx context.Context, reg *model.Registration) error
	ConfirmRegistration(ctx context.Context, sessionID, registrationID string) error
	GetRegistrationsBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.Registration, error)
}

type checkInService struct {
	checkIns      repository.CheckInRepository
	registrations repository.RegistrationRepository
	sessions      sessionsrepo.SessionRepository
	locks         *locks.Manager
	publisher     *events.Publisher
	validator     *validator.CheckInValidator
	cfg           *config.Config

	// now is swappable for tests; production uses the wall clock.
	now func() time.Time
}

func NewCheckInService(
	checkIns repository.CheckInRepository,
	registrations repository.RegistrationRepository,
	sessions sessionsrepo.SessionRepository,
	lockMgr *locks.Manager,
	publisher *events.Publisher,
	validator *validator.CheckInValidator,
	cfg *config.Config,
) CheckInService {
	return &checkInService{
		checkIns:      checkIns,
		registrations: registrations,
		sessions:      sessions,
		locks:         lockMgr,
		publisher:     publisher,
		validator:     validator,
		cfg:           cfg,
		now:           time.Now,
	}
}

// CheckIn admits a participant into a session. The whole decision sequence
// runs under the per-session lock so the capacity check and the counter
// increment are atomic with respect to every concurrent check-in for the
// same session. Check-ins for different sessions never contend.
func (s *checkInService) CheckIn(ctx context.Context, c *model.CheckIn) (*CheckInResult, error) {
	c.ParticipantID = sanitizer.TrimAndNormalize(c.ParticipantID)
	if c.Method == "" {
		c.Method = model.MethodManual
	}

	if err := s.validator.Validate(c); err != nil {
		s.cfg.Log.Warn("Check-in validation failed",
			"participant_id", c.ParticipantID,
			"session_id", c.SessionID,
			"error", err,
		)
		return nil, apperrors.Validation("Check-in validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var result *CheckInResult
	err := s.locks.WithLock(ctx, "checkin:session:"+c.SessionID, func(ctx context.Context) error {
		var err error
		result, err = s.admit(ctx, c)
		return err
	})
	if err != nil {
		if errors.Is(err, locks.ErrContended) {
			s.cfg.Log.Warn("Check-in lock contended",
				"participant_id", c.ParticipantID,
				"session_id", c.SessionID,
			)
			return nil, apperrors.LockContended("checkin:session:" + c.SessionID)
		}
		return nil, err
	}

	if !result.AlreadyCheckedIn {
		s.publisher.CheckInRecorded(ctx, result.Record)
	}
	return result, nil
}

// admit runs the admission sequence. Caller holds the session lock.
func (s *checkInService) admit(ctx context.Context, c *model.CheckIn) (*CheckInResult, error) {
	session, err := s.loadSession(ctx, c.SessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != model.SessionOpen {
		return nil, apperrors.SessionNotOpen(string(session.Status))
	}

	if session.RequiresRegistration {
		_, err := s.registrations.FindConfirmed(ctx, c.ParticipantID, c.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrRegistrationNotFound) {
				return nil, apperrors.NotRegistered(c.ParticipantID)
			}
			s.cfg.Log.Error("Failed to look up registration",
				"participant_id", c.ParticipantID,
				"session_id", c.SessionID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to verify registration", err)
		}
	}

	existing, err := s.checkIns.FindByParticipantAndSession(ctx, c.ParticipantID, c.SessionID)
	if err == nil {
		// Idempotent replay: hand back the original record unchanged.
		return replayResult(existing), nil
	}
	if !errors.Is(err, checkinerrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up existing check-in",
			"participant_id", c.ParticipantID,
			"session_id", c.SessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to verify check-in uniqueness", err)
	}

	if session.CapacityEnforced && session.Capacity > 0 && session.CheckInsCount >= session.Capacity {
		return nil, apperrors.CapacityExceeded(session.Capacity)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	policy := lifecycle.ResolvePolicy(session, s.cfg)

	record := &model.CheckIn{
		ParticipantID: c.ParticipantID,
		SessionID:     c.SessionID,
		CheckInTime:   now,
		Method:        c.Method,
		IsLate:        lifecycle.IsLate(now, session.StartTime, policy),
		RecordedBy:    c.RecordedBy,
	}

	// Same lock window as the capacity check, and a single transaction, so
	// the record and the counter always move together and no interleaved
	// request can observe a stale count.
	err = s.sessions.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkIns.Create(sessCtx, record); err != nil {
			return err
		}
		return s.sessions.IncrementCheckIns(sessCtx, c.SessionID)
	})
	if err != nil {
		if errors.Is(err, checkinerrors.ErrDuplicate) {
			// The unique index caught a writer this process never saw,
			// possible only in degraded mode. Resolve idempotently.
			existing, findErr := s.checkIns.FindByParticipantAndSession(ctx, c.ParticipantID, c.SessionID)
			if findErr == nil {
				return replayResult(existing), nil
			}
			return nil, apperrors.Internal("Failed to resolve duplicate check-in", findErr)
		}
		s.cfg.Log.Error("Failed to persist check-in",
			"participant_id", c.ParticipantID,
			"session_id", c.SessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to record check-in", err)
	}

	s.cfg.Log.Info("Check-in recorded",
		"check_in_id", record.ID,
		"participant_id", record.ParticipantID,
		"session_id", record.SessionID,
		"method", record.Method,
		"is_late", record.IsLate,
	)
	return &CheckInResult{Record: record}, nil
}

func (s *checkInService) loadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Session", sessionID)
		}
		if errors.Is(err, sessionserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid session ID format")
		}
		s.cfg.Log.Error("Failed to load session for check-in",
			"session_id", sessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load session", err)
	}
	return session, nil
}

func (s *checkInService) GetBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.CheckIn, int64, error) {
	if sessionID == "" {
		return nil, 0, apperrors.InvalidInput("Session ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var checkIns []*model.CheckIn
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.checkIns.CountBySession(sharedCtx, sessionID)
		if err != nil {
			s.cfg.Log.Error("Failed to count check-ins", "session_id", sessionID, "error", err)
			errCount = apperrors.Internal("Failed to count check-ins", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		checkIns, err = s.checkIns.FindBySession(sharedCtx, sessionID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list check-ins",
				"session_id", sessionID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve check-ins", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return checkIns, count, nil
}

func (s *checkInService) Register(ctx context.Context, reg *model.Registration) error {
	reg.ParticipantID = sanitizer.TrimAndNormalize(reg.ParticipantID)
	if reg.Status == "" {
		reg.Status = model.RegistrationConfirmed
	}

	if err := s.validator.ValidateRegistration(reg); err != nil {
		return apperrors.Validation("Registration validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.loadSession(ctx, reg.SessionID); err != nil {
		return err
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		s.cfg.Log.Error("Failed to create registration",
			"participant_id", reg.ParticipantID,
			"session_id", reg.SessionID,
			"error", err,
		)
		return apperrors.Internal("Failed to create registration", err)
	}

	s.cfg.Log.Info("Registration created",
		"id", reg.ID,
		"participant_id", reg.ParticipantID,
		"session_id", reg.SessionID,
		"status", reg.Status,
	)
	return nil
}

// ConfirmRegistration moves a registration to confirmed so its participant
// passes the registration gate on check-in.
func (s *checkInService) ConfirmRegistration(ctx context.Context, sessionID, registrationID string) error {
	if sessionID == "" || registrationID == "" {
		return apperrors.InvalidInput("Session ID and registration ID cannot be empty")
	}

	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return err
	}

	if err := s.registrations.UpdateStatus(ctx, registrationID, model.RegistrationConfirmed); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return apperrors.NotFoundWithID("Registration", registrationID)
		}
		if errors.Is(err, checkinerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid registration ID format")
		}
		s.cfg.Log.Error("Failed to confirm registration",
			"registration_id", registrationID,
			"session_id", sessionID,
			"error", err,
		)
		return apperrors.Internal("Failed to confirm registration", err)
	}

	s.cfg.Log.Info("Registration confirmed",
		"registration_id", registrationID,
		"session_id", sessionID,
	)
	return nil
}

func (s *checkInService) GetRegistrationsBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.Registration, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	registrations, err := s.registrations.FindBySession(ctx, sessionID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list registrations",
			"session_id", sessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve registrations", err)
	}
	return registrations, nil
}
