package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/querydeck/querydeck/pkg/cryptox"
	"github.com/querydeck/querydeck/pkg/slogx"
)

// BootstrapService seeds the roles and the admin account the system needs
// before it can serve anything. It runs on every start and is idempotent:
// rows that already exist are left untouched.
type BootstrapService struct {
	Store store.Store

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	PasswordIterations int

	// Now is the clock used for seeded rows. Defaults to time.Now.
	Now func() time.Time
}

func (s *BootstrapService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// EnsureDefaults creates the `user` and `admin` roles and the configured
// admin account if they are missing. All writes happen in one transaction so
// a crash mid-bootstrap cannot leave a half-seeded system.
func (s *BootstrapService) EnsureDefaults(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := s.ensureRole(ctx, tx, domain.Role{
			Name:        "user",
			Description: "Regular user with chat and explore access",
			Permissions: map[string]bool{
				domain.PermissionChat:      true,
				domain.PermissionExplore:   true,
				domain.PermissionConstruct: false,
				domain.PermissionAdmin:     false,
			},
		})
		if err != nil {
			return fmt.Errorf("ensure user role: %w", err)
		}

		adminRole, err := s.ensureRole(ctx, tx, domain.Role{
			Name:        "admin",
			Description: "Administrator with full access",
			Permissions: map[string]bool{
				domain.PermissionChat:      true,
				domain.PermissionExplore:   true,
				domain.PermissionConstruct: true,
				domain.PermissionAdmin:     true,
			},
		})
		if err != nil {
			return fmt.Errorf("ensure admin role: %w", err)
		}

		_, err = tx.Users().GetUserByUsername(ctx, s.AdminUsername)
		if err == nil {
			return nil // admin already present
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("admin lookup: %w", err)
		}

		salt, err := cryptox.GenerateSalt()
		if err != nil {
			return fmt.Errorf("generate admin salt: %w", err)
		}

		now := s.now()
		admin, err := tx.Users().CreateUser(ctx, domain.User{
			Username:     s.AdminUsername,
			Email:        s.AdminEmail,
			PasswordHash: cryptox.HashPassword(s.AdminPassword, salt, s.PasswordIterations),
			Salt:         salt,
			FullName:     "Administrator",
			RoleID:       adminRole.ID,
			IsActive:     true,
			IsSuperuser:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		l.Info("bootstrapped admin account",
			slog.Int64("user_id", admin.ID),
			slog.String("username", admin.Username),
		)
		return nil
	})
}

// ensureRole returns the existing role of the same name or creates it.
func (s *BootstrapService) ensureRole(ctx context.Context, tx store.Tx, role domain.Role) (domain.Role, error) {
	existing, err := tx.Roles().GetRoleByName(ctx, role.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role.CreatedAt = s.now()
	return tx.Roles().CreateRole(ctx, role)
}
