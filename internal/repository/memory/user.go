package memory

import (
	"context"
	"time"

	"novara/internal/model"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return model.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return model.ErrEmailExists
		}
	}

	user.ID = r.s.nextUserID
	r.s.nextUserID++
	user.CreatedAt = time.Now().UTC()

	r.s.users[user.ID] = copyUser(user)
	r.s.userOrder = append(r.s.userOrder, user.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *userRepository) UpdateProfilePicture(ctx context.Context, id int64, picture *string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	updated := copyUser(u)
	updated.ProfilePicture = copyString(picture)
	r.s.users[id] = updated
	return copyUser(updated), nil
}

func (r *userRepository) find(match func(*model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; match(u) {
			return copyUser(u), nil
		}
	}
	return nil, model.ErrUserNotFound
}
