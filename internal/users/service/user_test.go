package service

import (
	"context"
	"testing"
	"time"

	userserrors "busline/internal/users/errors"
	"busline/internal/users/validator"
	"busline/pkg/auth"
	"busline/pkg/config"
	mongotx "busline/pkg/db/mongo"
	apperrors "busline/pkg/errors"
	"busline/pkg/logger"
	"busline/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc        func(ctx context.Context, user *model.User) error
	findByIDFunc      func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc   func(ctx context.Context, email string) (*model.User, error)
	updateFunc        func(ctx context.Context, id string, user *model.User) error
	deleteFunc        func(ctx context.Context, id string) error
	appendBookingFunc func(ctx context.Context, id string, booking model.BookingSummary) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "64f000000000000000000001"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id string, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) AppendBooking(ctx context.Context, id string, booking model.BookingSummary) error {
	if m.appendBookingFunc != nil {
		return m.appendBookingFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:        log,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	}
}

func newTestUserService(repo *mockUserRepository) UserService {
	cfg := testConfig()
	return NewUserService(repo, validator.NewUserValidator(cfg.Log), cfg)
}

func TestSignUp_HashesPasswordAndDefaultsRole(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			user.ID = "64f000000000000000000001"
			return nil
		},
	}
	service := newTestUserService(repo)

	user, err := service.SignUp(context.Background(), &model.SignUpRequest{
		Name:     "  Dana  Levi ",
		Email:    "Dana@Example.COM",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if user.Email != "dana@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Name != "Dana Levi" {
		t.Errorf("expected normalized name, got %q", user.Name)
	}
	if user.Role != config.RoleUser {
		t.Errorf("expected default role %q, got %q", config.RoleUser, user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-password" {
		t.Error("expected password to be hashed")
	}
	if !auth.CheckPassword(user.PasswordHash, "s3cret-password") {
		t.Error("hash does not verify against the original password")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return userserrors.ErrDuplicateEmail
		},
	}
	service := newTestUserService(repo)

	_, err := service.SignUp(context.Background(), &model.SignUpRequest{
		Name:     "Dana Levi",
		Email:    "dana@example.com",
		Password: "s3cret-password",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSignUp_RejectsShortPassword(t *testing.T) {
	service := newTestUserService(&mockUserRepository{})

	_, err := service.SignUp(context.Background(), &model.SignUpRequest{
		Name:     "Dana Levi",
		Email:    "dana@example.com",
		Password: "short",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignIn_Success(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email != "dana@example.com" {
				t.Errorf("expected normalized email lookup, got %q", email)
			}
			return &model.User{
				ID:           "64f000000000000000000001",
				Email:        email,
				PasswordHash: hash,
				Role:         config.RoleUser,
			}, nil
		},
	}
	service := newTestUserService(repo)

	token, user, err := service.SignIn(context.Background(), &model.SignInRequest{
		Email:    " Dana@Example.com ",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == nil || token.Token == "" {
		t.Fatal("expected a signed token")
	}
	if user.ID != "64f000000000000000000001" {
		t.Errorf("unexpected user returned: %+v", user)
	}

	identity, err := auth.ParseAccessToken("test-secret", token.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if identity.UserID != user.ID || identity.Role != config.RoleUser {
		t.Errorf("unexpected identity in token: %+v", identity)
	}
}

func TestSignIn_WrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	hash, err := auth.HashPassword("right-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == "known@example.com" {
				return &model.User{ID: "64f000000000000000000001", Email: email, PasswordHash: hash, Role: config.RoleUser}, nil
			}
			return nil, userserrors.ErrNotFound
		},
	}
	service := newTestUserService(repo)

	_, _, errWrongPassword := service.SignIn(context.Background(), &model.SignInRequest{
		Email:    "known@example.com",
		Password: "wrong-password",
	})
	_, _, errUnknownEmail := service.SignIn(context.Background(), &model.SignInRequest{
		Email:    "unknown@example.com",
		Password: "whatever-password",
	})

	for name, err := range map[string]error{
		"wrong password": errWrongPassword,
		"unknown email":  errUnknownEmail,
	} {
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized error, got %v", name, err)
		}
		if appErr.Message != invalidCredentialsMsg {
			t.Errorf("%s: message %q leaks account existence", name, appErr.Message)
		}
	}
}

func TestUpdate_RehashesPassword(t *testing.T) {
	oldHash, err := auth.HashPassword("old-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	var updated *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{
				ID:           id,
				Name:         "Dana Levi",
				Email:        "dana@example.com",
				PasswordHash: oldHash,
				Role:         config.RoleUser,
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, user *model.User) error {
			updated = user
			return nil
		},
	}
	service := newTestUserService(repo)

	_, err = service.Update(context.Background(), "64f000000000000000000001", &model.UserUpdate{
		Password: "new-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
	if updated.PasswordHash == oldHash {
		t.Error("expected password hash to change")
	}
	if !auth.CheckPassword(updated.PasswordHash, "new-password-123") {
		t.Error("new hash does not verify against the new password")
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockUserRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return userserrors.ErrNotFound
		},
	}
	service := newTestUserService(repo)

	err := service.Delete(context.Background(), "64f000000000000000000009")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
