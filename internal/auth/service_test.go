package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/jvacosta/dailyfish-backend/pkg/auth"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/security"
)

type stubUserRepo struct {
	createFn          func(ctx context.Context, user *models.User) (*models.User, error)
	findByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	findByUsernameFn  func(ctx context.Context, username string) (*models.User, error)
	lastLoginID       uuid.UUID
	lastLoginAt       time.Time
	updateLastLoginFn func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createFn == nil {
		return nil, errors.New("unexpected Create")
	}
	return s.createFn(ctx, user)
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findByEmailFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.findByEmailFn(ctx, email)
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.findByUsernameFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.findByUsernameFn(ctx, username)
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.updateLastLoginFn != nil {
		return s.updateLastLoginFn(ctx, id, at)
	}
	s.lastLoginID = id
	s.lastLoginAt = at
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "dailyfish-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func activeBuyer(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "mila@dailyfish.ph",
		Username:     "mila",
		PasswordHash: hash,
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
}

func TestNewServiceRequiresUserRepo(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error for nil user repository")
	}
}

func TestRegisterCreatesBuyer(t *testing.T) {
	var created *models.User
	repo := &stubUserRepo{
		createFn: func(_ context.Context, user *models.User) (*models.User, error) {
			created = user
			user.ID = uuid.New()
			return user, nil
		},
	}
	svc := newTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Mila@DailyFish.PH ",
		Username:  "mila",
		Password:  "correct-horse",
		FirstName: "Mila",
		LastName:  "Reyes",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Email != "mila@dailyfish.ph" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if created.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role, got %q", created.Role)
	}
	if created.PasswordHash == "correct-horse" || created.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}
	valid, err := security.VerifyPassword("correct-horse", created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash does not verify: valid=%v err=%v", valid, err)
	}
	if resp.User == nil || resp.User.Email != "mila@dailyfish.ph" {
		t.Fatalf("unexpected response user: %+v", resp.User)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "mila@dailyfish.ph",
		Username:  "mila",
		Password:  "short",
		FirstName: "Mila",
		LastName:  "Reyes",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	repo := &stubUserRepo{
		createFn: func(context.Context, *models.User) (*models.User, error) {
			return nil, errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "mila@dailyfish.ph",
		Username:  "mila",
		Password:  "correct-horse",
		FirstName: "Mila",
		LastName:  "Reyes",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginByEmailMintsToken(t *testing.T) {
	user := activeBuyer(t, "correct-horse")
	repo := &stubUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email != user.Email {
				return nil, gorm.ErrRecordNotFound
			}
			return user, nil
		},
	}
	svc := newTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Identifier: " Mila@DailyFish.PH ",
		Password:   "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token user mismatch: %s != %s", claims.UserID, user.ID)
	}
	if claims.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role in token, got %q", claims.Role)
	}
	if repo.lastLoginID != user.ID {
		t.Fatal("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected response user: %+v", resp.User)
	}
}

func TestLoginByUsername(t *testing.T) {
	user := activeBuyer(t, "correct-horse")
	repo := &stubUserRepo{
		findByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username != "mila" {
				return nil, gorm.ErrRecordNotFound
			}
			return user, nil
		},
	}
	svc := newTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Identifier: "mila",
		Password:   "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := activeBuyer(t, "correct-horse")
	repo := &stubUserRepo{
		findByEmailFn: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{
		Identifier: user.Email,
		Password:   "wrong-horse",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Identifier: "nobody@dailyfish.ph",
		Password:   "correct-horse",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := activeBuyer(t, "correct-horse")
	user.IsActive = false
	repo := &stubUserRepo{
		findByEmailFn: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{
		Identifier: user.Email,
		Password:   "correct-horse",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
