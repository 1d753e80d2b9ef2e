package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/security"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// EnsureAdmin provisions the configured admin account at startup. It is
// idempotent: an existing account is left alone unless ResetPassword is
// set, and a concurrent create by another replica is treated as success.
func EnsureAdmin(
	ctx context.Context,
	repo userRepository,
	logg *logger.Logger,
	adminCfg config.AdminConfig,
	passwordCfg config.PasswordConfig,
) error {
	if repo == nil {
		return fmt.Errorf("user repository is required")
	}
	if logg == nil {
		return fmt.Errorf("logger is required")
	}
	if !adminCfg.Enabled() {
		logg.Info(ctx, "admin bootstrap disabled, no credentials configured")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(adminCfg.Email))
	username := strings.TrimSpace(adminCfg.Username)
	if username == "" {
		username = "admin"
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin user")
	}

	if existing != nil {
		if !adminCfg.ResetPassword {
			logg.Info(ctx, "admin account already provisioned")
			return nil
		}
		hash, err := security.HashPassword(adminCfg.Password, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}
		if err := repo.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset admin password")
		}
		ctx = logg.WithField(ctx, "user_id", existing.ID.String())
		logg.Info(ctx, "admin password reset")
		return nil
	}

	hash, err := security.HashPassword(adminCfg.Password, passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}

	created, err := repo.Create(ctx, &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    "DailyFish",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			logg.Warn(ctx, "admin account created by another replica")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin user")
	}

	ctx = logg.WithField(ctx, "user_id", created.ID.String())
	logg.Info(ctx, "admin account provisioned")
	return nil
}
