package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios y su pertenencia a empresas.
type UserUseCase struct {
	repo     repository.UserRepository
	roleRepo repository.UserRoleRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roleRepo repository.UserRoleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roleRepo: roleRepo}
}

// GetByID obtiene un usuario con sus roles en la empresa. Si no pertenece a ella devuelve domain.ErrNotFound.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	roles, err := uc.roleRepo.ListRoles(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, domain.ErrNotFound
	}
	resp := entityToUserResponse(user)
	resp.Roles = roles
	return resp, nil
}

// ListByCompany lista los usuarios con algún rol en la empresa.
func (uc *UserUseCase) ListByCompany(ctx context.Context, companyID string, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		resp := entityToUserResponse(u)
		roles, err := uc.roleRepo.ListRoles(ctx, u.ID, companyID)
		if err != nil {
			return nil, err
		}
		resp.Roles = roles
		items = append(items, *resp)
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// AssignRole agrega un usuario existente a la empresa. God no es asignable por la API.
func (uc *UserUseCase) AssignRole(ctx context.Context, companyID string, in dto.AssignRoleRequest) (*dto.UserResponse, error) {
	if in.Role == entity.RoleGod {
		return nil, domain.ErrForbidden
	}
	if in.Role != entity.RoleAdmin && in.Role != entity.RoleMember {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.repo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.roleRepo.Assign(ctx, &entity.UserRole{
		UserID:    in.UserID,
		CompanyID: companyID,
		Role:      in.Role,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, in.UserID)
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
