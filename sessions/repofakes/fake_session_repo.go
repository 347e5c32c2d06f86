package fakesessionrepo

import (
	"sync"
	"time"

	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo holds login sessions in memory, indexed by refresh jti and by owner.
type FakeSessionRepo struct {
	mu     sync.RWMutex
	byID   map[string]sessions.SessionData
	byUser map[string]map[string]struct{}
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		byID:   map[string]sessions.SessionData{},
		byUser: map[string]map[string]struct{}{},
	}
}

func (r *FakeSessionRepo) Upsert(session *sessions.SessionData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byID[session.ID]; ok && prev.UserID != session.UserID {
		r.unindex(prev.UserID, prev.ID)
	}
	r.byID[session.ID] = *session
	ids, ok := r.byUser[session.UserID]
	if !ok {
		ids = map[string]struct{}{}
		r.byUser[session.UserID] = ids
	}
	ids[session.ID] = struct{}{}
	return nil
}

func (r *FakeSessionRepo) Get(sessionID string) (*sessions.SessionData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return &s, nil
}

func (r *FakeSessionRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	r.remove(s)
	return nil
}

func (r *FakeSessionRepo) DeleteByUserID(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.byUser[userID] {
		delete(r.byID, id)
	}
	delete(r.byUser, userID)
	return nil
}

func (r *FakeSessionRepo) DeleteExpiredSessions(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.byID {
		if s.Expired(now) {
			r.remove(s)
		}
	}
	return nil
}

// CountForUser is the number of live login sessions the user holds.
func (r *FakeSessionRepo) CountForUser(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

func (r *FakeSessionRepo) remove(s sessions.SessionData) {
	delete(r.byID, s.ID)
	r.unindex(s.UserID, s.ID)
}

func (r *FakeSessionRepo) unindex(userID, sessionID string) {
	ids := r.byUser[userID]
	delete(ids, sessionID)
	if len(ids) == 0 {
		delete(r.byUser, userID)
	}
}
