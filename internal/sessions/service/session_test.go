package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	sessionserrors "checkinapp/internal/sessions/errors"
	"checkinapp/internal/sessions/validator"
	"checkinapp/pkg/config"
	apperrors "checkinapp/pkg/errors"
	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"

	mongotx "checkinapp/pkg/db/mongo"
)

// Mock repository for testing
type mockSessionRepository struct {
	createFunc               func(ctx context.Context, s *model.Session) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Session, error)
	findAllFunc              func(ctx context.Context, limit int, offset int) ([]*model.Session, error)
	findDueForTransitionFunc func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error)
	updateStatusFunc         func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error)
	updateFunc               func(ctx context.Context, id string, s *model.Session) (*mongo.UpdateResult, error)
	incrementCheckInsFunc    func(ctx context.Context, id string) error
	countFunc                func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, s *model.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", sessionserrors.ErrNotFound, id)
}

func (m *mockSessionRepository) FindAll(ctx context.Context, limit int, offset int) ([]*model.Session, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionRepository) FindDueForTransition(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
	if m.findDueForTransitionFunc != nil {
		return m.findDueForTransitionFunc(ctx, now, maxLead)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionRepository) UpdateStatus(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *mockSessionRepository) Update(ctx context.Context, id string, s *model.Session) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, s)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockSessionRepository) IncrementCheckIns(ctx context.Context, id string) error {
	if m.incrementCheckInsFunc != nil {
		return m.incrementCheckInsFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return errors.New("transactions not supported in mock")
}

func newTestService(repo *mockSessionRepository) SessionService {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard, Service: "test"})
	cfg := &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
	return NewSessionService(repo, validator.NewSessionValidator(log), cfg)
}

func newSession(status model.SessionStatus) *model.Session {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &model.Session{
		ID:        "65f000000000000000000001",
		Name:      "Orientation Day",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    status,
		Capacity:  100,
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	var created *model.Session
	repo := &mockSessionRepository{
		createFunc: func(ctx context.Context, s *model.Session) error {
			created = s
			return nil
		},
	}
	svc := newTestService(repo)

	session := newSession("")
	session.ID = ""
	session.Name = "  Orientation   Day "
	session.CheckInsCount = 42

	if err := svc.Create(context.Background(), session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created == nil {
		t.Fatal("repository Create was not called")
	}
	if created.Status != model.SessionScheduled {
		t.Errorf("new session status = %s, want scheduled", created.Status)
	}
	if created.CheckInsCount != 0 {
		t.Errorf("new session counter = %d, want 0", created.CheckInsCount)
	}
	if !created.AutoEnd {
		t.Error("new session should default to auto-end")
	}
	if created.Name != "Orientation Day" {
		t.Errorf("name not normalized: %q", created.Name)
	}
}

func TestCreate_ValidationRejected(t *testing.T) {
	repo := &mockSessionRepository{
		createFunc: func(ctx context.Context, s *model.Session) error {
			t.Fatal("Create must not reach the repository on invalid input")
			return nil
		},
	}
	svc := newTestService(repo)

	session := newSession("")
	session.EndTime = session.StartTime.Add(-time.Hour)

	err := svc.Create(context.Background(), session)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{
			name:     "empty id",
			id:       "",
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "not found",
			id:       "65f000000000000000000001",
			repoErr:  fmt.Errorf("%w: x", sessionserrors.ErrNotFound),
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "bad id format",
			id:       "not-an-object-id",
			repoErr:  fmt.Errorf("%w: x", sessionserrors.ErrInvalidID),
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "infrastructure failure",
			id:       "65f000000000000000000001",
			repoErr:  errors.New("socket closed"),
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockSessionRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
					return nil, tt.repoErr
				},
			}
			svc := newTestService(repo)

			_, err := svc.GetByID(context.Background(), tt.id)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestGetAll_CountAndPage(t *testing.T) {
	repo := &mockSessionRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 7, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int) ([]*model.Session, error) {
			return []*model.Session{newSession(model.SessionOpen)}, nil
		},
	}
	svc := newTestService(repo)

	sessions, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
	if len(sessions) != 1 {
		t.Errorf("page size = %d, want 1", len(sessions))
	}
}

func TestClose(t *testing.T) {
	tests := []struct {
		name     string
		status   model.SessionStatus
		moved    bool
		wantErr  bool
		wantCode string
	}{
		{name: "scheduled closes", status: model.SessionScheduled, moved: true},
		{name: "open closes", status: model.SessionOpen, moved: true},
		{name: "ended rejects", status: model.SessionEnded, wantErr: true, wantCode: apperrors.CodeConflict},
		{name: "cancelled rejects", status: model.SessionCancelled, wantErr: true, wantCode: apperrors.CodeConflict},
		{name: "lost race rejects", status: model.SessionOpen, moved: false, wantErr: true, wantCode: apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newSession(tt.status)
			repo := &mockSessionRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
					return session, nil
				},
				updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
					if from != tt.status {
						t.Errorf("from = %s, want %s", from, tt.status)
					}
					if to != model.SessionClosed {
						t.Errorf("to = %s, want closed", to)
					}
					return tt.moved, nil
				},
			}
			svc := newTestService(repo)

			err := svc.Close(context.Background(), session.ID)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
					t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Close failed: %v", err)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		status  model.SessionStatus
		wantErr bool
	}{
		{name: "scheduled cancels", status: model.SessionScheduled},
		{name: "open cancels", status: model.SessionOpen},
		{name: "ended rejects", status: model.SessionEnded, wantErr: true},
		{name: "closed rejects", status: model.SessionClosed, wantErr: true},
		{name: "cancelled rejects", status: model.SessionCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newSession(tt.status)
			repo := &mockSessionRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
					return session, nil
				},
				updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
					if to != model.SessionCancelled {
						t.Errorf("to = %s, want cancelled", to)
					}
					return true, nil
				},
			}
			svc := newTestService(repo)

			err := svc.Cancel(context.Background(), session.ID)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Cancel failed: %v", err)
			}
		})
	}
}

func TestUpdate_TerminalSessionRejected(t *testing.T) {
	session := newSession(model.SessionEnded)
	repo := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return session, nil
		},
	}
	svc := newTestService(repo)

	name := "New Name"
	err := svc.Update(context.Background(), session.ID, &model.SessionUpdate{Name: &name})
	if err == nil {
		t.Fatal("expected conflict for terminal session")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
}
