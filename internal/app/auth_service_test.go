package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	listFn          func(ctx context.Context) ([]domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, id string) error
	deleteByUserFn  func(ctx context.Context, userID int64) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, id, userID, username, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUser(ctx context.Context, userID int64) error {
	if m.deleteByUserFn != nil {
		return m.deleteByUserFn(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()

	var storedHash string
	users := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			storedHash = passwordHash
			return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
		},
	}
	sessions := &mockSessionRepo{}

	svc := NewAuthService(users, sessions)
	session, err := svc.Register(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session == nil || session.ID == "" {
		t.Fatal("expected a session with an id")
	}
	if session.Username != "alice" {
		t.Errorf("expected username 'alice', got %s", session.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("password1")); err != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Register(ctx, "alice", "password1")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.Register(context.Background(), "alice", "seven77")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}

	created := false
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error {
			created = true
			if userID != 1 {
				t.Errorf("expected userID 1, got %d", userID)
			}
			if id == "" {
				t.Error("session id should not be empty")
			}
			if until := time.Until(expiresAt); until < 23*time.Hour || until > 25*time.Hour {
				t.Errorf("expected ~24h expiry, got %s", until)
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	session, err := svc.Login(ctx, "testuser", password)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session == nil || session.ID == "" {
		t.Fatal("expected a session with an id")
	}
	if !created {
		t.Error("expected session row to be created")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Login(ctx, "testuser", "wrongpass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.Login(context.Background(), "ghost", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_InvalidatesPriorSessions(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 7, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}

	var deletedFor int64
	var order []string
	sessions := &mockSessionRepo{
		deleteByUserFn: func(ctx context.Context, userID int64) error {
			deletedFor = userID
			order = append(order, "delete")
			return nil
		},
		createFn: func(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error {
			order = append(order, "create")
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	if _, err := svc.Login(ctx, "testuser", "testpass123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deletedFor != 7 {
		t.Errorf("expected prior sessions of user 7 deleted, got %d", deletedFor)
	}
	if len(order) != 2 || order[0] != "delete" || order[1] != "create" {
		t.Errorf("expected delete before create, got %v", order)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	ctx := context.Background()

	sessions := &mockSessionRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Session, error) {
			return &domain.Session{ID: id, UserID: 1, Username: "testuser", ExpiresAt: time.Now().Add(1 * time.Hour)}, nil
		},
	}
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser"}, nil
		},
	}

	svc := NewAuthService(users, sessions)
	user, err := svc.ValidateSession(ctx, "validsession")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %s", user.Username)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	ctx := context.Background()

	deleted := false
	sessions := &mockSessionRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Session, error) {
			// Still present in the store, but past its expiry.
			return &domain.Session{ID: id, UserID: 1, ExpiresAt: time.Now().Add(-1 * time.Hour)}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions)
	_, err := svc.ValidateSession(ctx, "expiredsession")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected expired session to be deleted")
	}
}

func TestAuthService_ValidateSession_Missing(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Session, error) {
			return nil, nil
		},
	})

	if _, err := svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for empty id, got %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), "gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for missing row, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	deleted := ""
	sessions := &mockSessionRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), "abc"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "abc" {
		t.Errorf("expected session 'abc' deleted, got %q", deleted)
	}
}
