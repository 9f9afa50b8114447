package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"reelgram/internal/model"
	"reelgram/internal/repository"
)

type userRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*model.User
	nextID int64
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:   make(map[int64]*model.User),
		nextID: 1,
	}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == model.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == model.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}

	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = time.Now()
	updated := *user
	r.byID[user.ID] = &updated
	return nil
}
