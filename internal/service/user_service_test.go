package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"couch-potato/internal/domain"
	"couch-potato/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func newTestUserService(repo repository.UserRepository) *UserService {
	return NewUserService(zap.NewNop(), repo, NewPasswordHasher(bcrypt.MinCost))
}

func TestUserService_Signup(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	user, err := svc.Signup(context.Background(), "New.User@Example.com", "password123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.EmailVerified {
		t.Fatalf("expected emailVerified false on signup")
	}
	if user.ID == "" || user.PasswordHash == "" {
		t.Fatalf("expected id and password hash to be set")
	}
	if user.PasswordHash == "password123" {
		t.Fatalf("plaintext password must not be stored")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestUserService_SignupDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo)

	if _, err := svc.Signup(context.Background(), "dup@example.com", "password123"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), "dup@example.com", "password123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.usersByID) != 1 {
		t.Fatalf("expected a single row, got %d", len(repo.usersByID))
	}
}

func TestUserService_SignupTranslatesStoreRace(t *testing.T) {
	// El pre-chequeo no ve la fila pero el índice único del store sí.
	repo := newMockUserRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := newTestUserService(repo)

	if _, err := svc.Signup(context.Background(), "race@example.com", "password123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on unique violation, got %v", err)
	}
}

func TestUserService_SignupValidation(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	if _, err := svc.Signup(context.Background(), "   ", "password123"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Signup(context.Background(), "short@example.com", "seven77"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	if _, err := svc.Signup(context.Background(), "login@example.com", "password123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "Login@Example.com", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "login@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserService_AuthenticateDoesNotLeakWhichPartFailed(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	if _, err := svc.Signup(context.Background(), "leak@example.com", "password123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, errWrongPassword := svc.Authenticate(context.Background(), "leak@example.com", "wrongpassword")
	_, errUnknownEmail := svc.Authenticate(context.Background(), "ghost@example.com", "password123")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Fatalf("both failures must be indistinguishable")
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	created, err := svc.Signup(context.Background(), "me@example.com", "password123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if user.Email != "me@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
