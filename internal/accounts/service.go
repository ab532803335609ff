package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/db"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/security"
)

const tempPasswordLength = 12

// Service manages the account directory.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	List(ctx context.Context) ([]AccountDTO, error)
	ListActiveByRole(ctx context.Context, role enums.AccountRole) ([]AgentSummary, error)
	Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input UpdateInput) (*AccountDTO, error)
	Deactivate(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*AccountDTO, error)
}

type sessionRevoker interface {
	RevokeAccount(ctx context.Context, accountID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	DB             txRunner
	Repo           *Repository
	Sessions       sessionRevoker
	PasswordConfig config.PasswordConfig
	Clock          func() time.Time
}

type service struct {
	db          txRunner
	repo        *Repository
	sessions    sessionRevoker
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs an accounts service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "accounts repository required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session revoker required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		sessions:    params.Sessions,
		passwordCfg: params.PasswordConfig,
		now:         clock,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	password := input.Password
	var temp string
	if password == "" {
		temp, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temporary password")
		}
		password = temp
	} else if err := security.ValidatePassword(password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account := &models.Account{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           input.Role,
		OfficialNumber: trimmedOrNil(input.OfficialNumber),
		ProfilePicture: trimmedOrNil(input.ProfilePicture),
		IsActive:       true,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check account email")
		}
		if err := repo.Create(ctx, account); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{Account: FromModel(account), TempPassword: temp}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(account), nil
}

func (s *service) List(ctx context.Context) ([]AccountDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	out := make([]AccountDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListActiveByRole(ctx context.Context, role enums.AccountRole) ([]AgentSummary, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	rows, err := s.repo.ListActiveByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("list %s accounts", role))
	}
	out := make([]AgentSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryFromModel(row))
	}
	return out, nil
}

// Update applies a partial change. Accounts may edit their own profile;
// only a super admin may edit others or change role and active status.
func (s *service) Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input UpdateInput) (*AccountDTO, error) {
	if !actor.IsAdmin() {
		if !actor.Owns(id) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another account")
		}
		if input.touchesPrivileged() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only an administrator may change role or status")
		}
	}
	if actor.Owns(id) && input.IsActive != nil && !*input.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}

	fields, err := s.updateFields(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Account
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if email, ok := fields["email"].(string); ok && email != current.Email {
			if _, err := repo.FindByEmail(ctx, email); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check account email")
			}
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.now().UTC()
			if err := repo.UpdateFields(ctx, id, fields); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
			}
		}
		updated, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if input.IsActive != nil && !*input.IsActive {
		if err := s.sessions.RevokeAccount(ctx, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke sessions")
		}
	}
	return FromModel(updated), nil
}

// Deactivate turns an account off and revokes its sessions. Accounts are
// never removed.
func (s *service) Deactivate(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*AccountDTO, error) {
	inactive := false
	return s.Update(ctx, actor, id, UpdateInput{IsActive: &inactive})
}

func (s *service) updateFields(input UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		fields["email"] = email
	}
	if input.Password != nil {
		if err := security.ValidatePassword(*input.Password); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		fields["password_hash"] = hash
	}
	if input.OfficialNumber != nil {
		fields["official_number"] = trimmedOrNil(input.OfficialNumber)
	}
	if input.ProfilePicture != nil {
		fields["profile_picture"] = trimmedOrNil(input.ProfilePicture)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		fields["role"] = *input.Role
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	return fields, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Account, error) {
	account, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "email is invalid")
	}
	return email, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
