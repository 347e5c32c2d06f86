package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	emailIds    map[string]string // normalised email to user id
	usernameIds map[string]string // normalised username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		emailIds:    make(map[string]string),
		usernameIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[user.ID]; ok || ur.taken(user) {
		return apperrors.ErrUserExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	ur.store(user)
	return nil
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if ur.taken(user) {
		return apperrors.ErrUserExists
	}
	if existing, ok := ur.users[user.ID]; ok {
		delete(ur.emailIds, normalise(existing.Email))
		delete(ur.usernameIds, normalise(existing.Username))
	}
	ur.store(user)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[normalise(email)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.copyOf(id), nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIds[normalise(username)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.copyOf(id), nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if _, ok := ur.users[id]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.copyOf(id), nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for id := range ur.users {
		userList = append(userList, ur.copyOf(id))
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Username < userList[j].Username
	})

	if offset >= len(userList) {
		return []*users.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(userList) {
		end = len(userList)
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) CountByRole(role users.Role) (int, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	count := 0
	for _, u := range ur.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// taken reports whether the username or email belongs to a different user. Lock must be held.
func (ur *FakeUserRepo) taken(user *users.User) bool {
	if id, ok := ur.usernameIds[normalise(user.Username)]; ok && id != user.ID {
		return true
	}
	if id, ok := ur.emailIds[normalise(user.Email)]; ok && id != user.ID {
		return true
	}
	return false
}

// store must be called with the lock held.
func (ur *FakeUserRepo) store(user *users.User) {
	stored := *user
	ur.users[user.ID] = &stored
	ur.emailIds[normalise(user.Email)] = user.ID
	ur.usernameIds[normalise(user.Username)] = user.ID
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// copyOf must be called with the lock held.
func (ur *FakeUserRepo) copyOf(id string) *users.User {
	u := *ur.users[id]
	return &u
}
