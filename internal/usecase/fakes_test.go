package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/email"
	"github.com/ninjahub/ninjahub-core/internal/mail"
)

// ---- users ----

type fakeUserRepo struct {
	create         func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByID       func(ctx context.Context, id int64) (*domain.User, error)
	findByEmail    func(ctx context.Context, email string) (*domain.User, error)
	findByLogin    func(ctx context.Context, login string) (*domain.User, error)
	usernameExists func(ctx context.Context, username string) (bool, error)
	emailExists    func(ctx context.Context, email string) (bool, error)
	update         func(ctx context.Context, u *domain.User) error
	setMeta        func(ctx context.Context, userID int64, values map[string]string) error
	resetPassword  func(ctx context.Context, userID int64, resetKey, passwordHash string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.findByLogin(ctx, login)
}

func (r *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.usernameExists(ctx, username)
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.emailExists(ctx, email)
}

func (r *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.update(ctx, u)
}

func (r *fakeUserRepo) SetMeta(ctx context.Context, userID int64, values map[string]string) error {
	return r.setMeta(ctx, userID, values)
}

func (r *fakeUserRepo) ResetPassword(ctx context.Context, userID int64, resetKey, passwordHash string) error {
	return r.resetPassword(ctx, userID, resetKey, passwordHash)
}

// memUsers backs a fakeUserRepo with a map, for flows that read back what
// they wrote.
type memUsers struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) repo() *fakeUserRepo {
	find := func(match func(*domain.User) bool) (*domain.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, u := range m.users {
			if match(u) {
				cp := *u
				cp.Meta = domain.UserMetaSchema.New()
				cp.Meta.Load(u.Meta.Values())
				return &cp, nil
			}
		}
		return nil, domain.ErrUserNotFound
	}
	return &fakeUserRepo{
		findByID: func(_ context.Context, id int64) (*domain.User, error) {
			return find(func(u *domain.User) bool { return u.ID == id })
		},
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return find(func(u *domain.User) bool { return u.Email == email })
		},
		findByLogin: func(_ context.Context, login string) (*domain.User, error) {
			return find(func(u *domain.User) bool { return u.Username == login })
		},
		setMeta: func(_ context.Context, id int64, values map[string]string) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			u, ok := m.users[id]
			if !ok {
				return domain.ErrUserNotFound
			}
			u.Meta.Load(values)
			return nil
		},
		resetPassword: func(_ context.Context, id int64, key, hash string) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			u, ok := m.users[id]
			if !ok {
				return domain.ErrUserNotFound
			}
			if key == "" || u.Meta.Get(domain.MetaResetPasswordKey) != key {
				return domain.ErrResetEmptyKey
			}
			u.PasswordHash = hash
			_ = u.Meta.Set(domain.MetaResetPasswordKey, "")
			return nil
		},
	}
}

func (m *memUsers) get(id int64) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func newUser(id int64, username, email string) *domain.User {
	u := domain.NewUser()
	u.ID = id
	u.Username = username
	u.Email = email
	u.DisplayName = "Test User"
	return u
}

// ---- posts ----

type fakePostRepo struct {
	insert   func(ctx context.Context, p *domain.Post) (*domain.Post, error)
	update   func(ctx context.Context, p *domain.Post) (*domain.Post, error)
	delete   func(ctx context.Context, id int64, force bool) error
	getByID  func(ctx context.Context, id int64) (*domain.Post, error)
	getByIDs func(ctx context.Context, ids []int64) ([]*domain.Post, error)
	list     func(ctx context.Context, q domain.PostQuery) ([]*domain.Post, error)
	count    func(ctx context.Context, q domain.PostQuery) (int, error)
	terms    func(ctx context.Context, taxonomy string) ([]domain.Term, error)
}

func (r *fakePostRepo) Insert(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	return r.insert(ctx, p)
}

func (r *fakePostRepo) Update(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	return r.update(ctx, p)
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64, force bool) error {
	return r.delete(ctx, id, force)
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	return r.getByID(ctx, id)
}

func (r *fakePostRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Post, error) {
	return r.getByIDs(ctx, ids)
}

func (r *fakePostRepo) List(ctx context.Context, q domain.PostQuery) ([]*domain.Post, error) {
	return r.list(ctx, q)
}

func (r *fakePostRepo) Count(ctx context.Context, q domain.PostQuery) (int, error) {
	return r.count(ctx, q)
}

func (r *fakePostRepo) Terms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	return r.terms(ctx, taxonomy)
}

// ---- hooks ----

type firedAction struct {
	hook string
	args []any
}

type fakeEvents struct {
	mu    sync.Mutex
	fired []firedAction
}

func (e *fakeEvents) DoAction(_ context.Context, hook string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fired = append(e.fired, firedAction{hook: hook, args: args})
}

func (e *fakeEvents) hooks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.fired))
	for i, f := range e.fired {
		out[i] = f.hook
	}
	return out
}

type fakeFilters struct {
	apply func(ctx context.Context, hook string, value any, args ...any) any
}

func (f *fakeFilters) ApplyFilters(ctx context.Context, hook string, value any, args ...any) any {
	if f.apply == nil {
		return value
	}
	return f.apply(ctx, hook, value, args...)
}

// ---- mail ----

type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) last(t *testing.T) email.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatal("no email sent")
	}
	return s.sent[len(s.sent)-1]
}

func newMailer(sender *fakeSender) *mail.Mailer {
	return mail.NewMailer(sender, nil, "no-reply@example.com")
}

// ---- helpers ----

const (
	testSiteURL   = "https://example.com"
	testJWTKey    = "usecase-test-jwt-secret-32-chars!!"
	testCryptoKey = "usecase-test-cryptor-secret-32chars"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newCryptor(t *testing.T) *cryptox.Cryptor {
	t.Helper()
	c, err := cryptox.New(testCryptoKey)
	if err != nil {
		t.Fatalf("cryptox.New: %v", err)
	}
	return c
}
