package service

import (
	"context"
	"time"

	"stint/internal/modules/session/domain"
	sessionout "stint/internal/modules/session/port/out"
	"stint/internal/platform/clock"
	"stint/internal/platform/id"
)

// SessionService owns session construction and transitions. Callers decide
// the transactional boundary; every method works against the store handle
// carried by ctx.
type SessionService struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.Store
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.Store) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, store: store}
}

func (s *SessionService) Start(ctx context.Context, description string, tags []string, project string) (domain.Session, error) {
	session, err := domain.NewSession(s.idGen.New(), description, tags, project, s.clock.Now())
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) Pause(ctx context.Context, session domain.Session) (domain.Session, error) {
	if err := session.Pause(s.clock.Now()); err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Update(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) Resume(ctx context.Context, session domain.Session) (domain.Session, error) {
	if err := session.Resume(s.clock.Now()); err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Update(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) Stop(ctx context.Context, session domain.Session) (domain.Session, error) {
	if err := session.Stop(s.clock.Now()); err != nil {
		return domain.Session{}, err
	}
	if err := s.store.Update(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) Active(ctx context.Context) (domain.Session, error) {
	return s.store.GetActive(ctx)
}

func (s *SessionService) List(ctx context.Context, filter domain.Filter) ([]domain.Session, error) {
	filter.Now = s.clock.Now()
	return s.store.List(ctx, filter)
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}
