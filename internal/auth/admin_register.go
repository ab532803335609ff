package auth

import (
	"context"

	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
)

// AdminRegisterRequest contains the credentials for the dev-only admin registration flow.
type AdminRegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdminRegisterService bootstraps super admin accounts outside production.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*accounts.AccountDTO, error)
}

type accountCreator interface {
	Create(ctx context.Context, input accounts.CreateInput) (*accounts.CreateResult, error)
}

type adminRegisterService struct {
	accounts accountCreator
}

// NewAdminRegisterService builds a dev admin registration service.
func NewAdminRegisterService(creator accountCreator) (AdminRegisterService, error) {
	if creator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "account service required")
	}
	return &adminRegisterService{accounts: creator}, nil
}

func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*accounts.AccountDTO, error) {
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	res, err := s.accounts.Create(ctx, accounts.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     enums.AccountRoleSuperAdmin,
	})
	if err != nil {
		return nil, err
	}
	return res.Account, nil
}
