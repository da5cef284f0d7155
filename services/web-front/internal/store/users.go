package store

import (
	"context"
	"sync"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

type UserState struct {
	Users      []domain.AdminUser
	Pagination domain.Pagination
	Error      string
	FormErrors map[string]string
}

// UserStore manages admin accounts.
type UserStore struct {
	api     *client.Client
	log     *logger.Logger
	perPage int

	mu         sync.Mutex
	users      []domain.AdminUser
	pagination domain.Pagination
	err        string
	formErrors map[string]string
}

func NewUserStore(api *client.Client, perPage int, log *logger.Logger) *UserStore {
	if perPage <= 0 {
		perPage = 20
	}
	return &UserStore{api: api, log: log, perPage: perPage, pagination: domain.Pagination{Page: 1, PerPage: perPage}}
}

func (u *UserStore) Fetch(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	list, err := u.api.ListUsers(ctx, page, u.perPage)
	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		u.err = client.Message(err)
		return err
	}
	u.err = ""
	u.users = list.Users
	u.pagination = domain.Pagination{Page: list.Page, PerPage: list.PerPage, Total: list.Total, TotalPages: list.TotalPages}
	return nil
}

func (u *UserStore) Create(ctx context.Context, in domain.AdminUserCreate) error {
	if err := domain.Validate(&in); err != nil {
		u.recordValidation(err)
		return err
	}
	if _, err := u.api.CreateUser(ctx, in); err != nil {
		u.setError(client.Message(err))
		return err
	}
	u.log.Infof("admin user %s created", in.Username)
	return u.refetch(ctx)
}

func (u *UserStore) Update(ctx context.Context, id int, in domain.AdminUserUpdate) error {
	if in.Role != nil {
		if _, err := domain.ParseRole(string(*in.Role)); err != nil {
			u.setError(err.Error())
			return err
		}
	}
	updated, err := u.api.UpdateUser(ctx, id, in)
	if err != nil {
		u.setError(client.Message(err))
		return err
	}
	u.apply(*updated)
	return nil
}

func (u *UserStore) Activate(ctx context.Context, id int) error {
	updated, err := u.api.ActivateUser(ctx, id)
	if err != nil {
		u.setError(client.Message(err))
		return err
	}
	u.apply(*updated)
	return nil
}

func (u *UserStore) Deactivate(ctx context.Context, id int) error {
	updated, err := u.api.DeactivateUser(ctx, id)
	if err != nil {
		u.setError(client.Message(err))
		return err
	}
	u.apply(*updated)
	return nil
}

func (u *UserStore) Delete(ctx context.Context, id int) error {
	if err := u.api.DeleteUser(ctx, id); err != nil {
		u.setError(client.Message(err))
		return err
	}
	return u.refetch(ctx)
}

// ChangePassword changes the password of the logged-in admin.
func (u *UserStore) ChangePassword(ctx context.Context, in domain.PasswordChange) error {
	if err := domain.Validate(&in); err != nil {
		u.recordValidation(err)
		return err
	}
	if _, err := u.api.ChangePassword(ctx, in); err != nil {
		u.setError(client.Message(err))
		return err
	}
	return nil
}

func (u *UserStore) refetch(ctx context.Context) error {
	u.mu.Lock()
	page := u.pagination.Page
	u.mu.Unlock()
	return u.Fetch(ctx, page)
}

func (u *UserStore) apply(user domain.AdminUser) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.users {
		if u.users[i].ID == user.ID {
			u.users[i] = user
			return
		}
	}
}

func (u *UserStore) recordValidation(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if ve, ok := err.(*domain.ValidationError); ok {
		u.formErrors = ve.Fields
	}
	u.err = err.Error()
}

func (u *UserStore) setError(msg string) {
	u.mu.Lock()
	u.err = msg
	u.mu.Unlock()
}

func (u *UserStore) ClearError() {
	u.mu.Lock()
	u.err = ""
	u.formErrors = nil
	u.mu.Unlock()
}

func (u *UserStore) Snapshot() UserState {
	u.mu.Lock()
	defer u.mu.Unlock()
	st := UserState{
		Users:      append([]domain.AdminUser(nil), u.users...),
		Pagination: u.pagination,
		Error:      u.err,
	}
	if u.formErrors != nil {
		st.FormErrors = make(map[string]string, len(u.formErrors))
		for k, v := range u.formErrors {
			st.FormErrors[k] = v
		}
	}
	return st
}
