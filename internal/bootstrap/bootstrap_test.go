package bootstrap

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/security"
)

type stubUserRepo struct {
	existing    *models.User
	created     *models.User
	createErr   error
	updatedID   uuid.UUID
	updatedHash string
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user.ID = uuid.New()
	s.created = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.existing != nil && s.existing.Email == email {
		return s.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.updatedID = id
	s.updatedHash = hash
	return nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "bootstrap-test", Output: io.Discard})
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

func enabledAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Email:    "admin@dailyfish.ph",
		Username: "admin",
		Password: "bootstrap-secret",
	}
}

func TestEnsureAdminNoopWhenDisabled(t *testing.T) {
	repo := &stubUserRepo{}
	err := EnsureAdmin(context.Background(), repo, quietLogger(), config.AdminConfig{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if repo.created != nil {
		t.Fatal("expected no user to be created")
	}
}

func TestEnsureAdminCreatesAccount(t *testing.T) {
	repo := &stubUserRepo{}
	err := EnsureAdmin(context.Background(), repo, quietLogger(), enabledAdminConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected admin account to be created")
	}
	if repo.created.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %q", repo.created.Role)
	}
	valid, err := security.VerifyPassword("bootstrap-secret", repo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash does not verify: valid=%v err=%v", valid, err)
	}
}

func TestEnsureAdminLeavesExistingAccountAlone(t *testing.T) {
	repo := &stubUserRepo{
		existing: &models.User{
			ID:           uuid.New(),
			Email:        "admin@dailyfish.ph",
			PasswordHash: "original-hash",
			Role:         enums.UserRoleAdmin,
			CreatedAt:    time.Now().UTC(),
		},
	}
	err := EnsureAdmin(context.Background(), repo, quietLogger(), enabledAdminConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if repo.created != nil {
		t.Fatal("expected no duplicate account")
	}
	if repo.updatedHash != "" {
		t.Fatal("expected password to remain untouched")
	}
}

func TestEnsureAdminResetsPasswordWhenConfigured(t *testing.T) {
	existing := &models.User{
		ID:           uuid.New(),
		Email:        "admin@dailyfish.ph",
		PasswordHash: "original-hash",
		Role:         enums.UserRoleAdmin,
	}
	repo := &stubUserRepo{existing: existing}
	cfg := enabledAdminConfig()
	cfg.ResetPassword = true

	err := EnsureAdmin(context.Background(), repo, quietLogger(), cfg, testPasswordConfig())
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if repo.updatedID != existing.ID {
		t.Fatal("expected password hash update for existing account")
	}
	valid, err := security.VerifyPassword("bootstrap-secret", repo.updatedHash)
	if err != nil || !valid {
		t.Fatalf("new hash does not verify: valid=%v err=%v", valid, err)
	}
}

func TestEnsureAdminTreatsConcurrentCreateAsSuccess(t *testing.T) {
	repo := &stubUserRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "idx_users_email"`),
	}
	err := EnsureAdmin(context.Background(), repo, quietLogger(), enabledAdminConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
}
