package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
	"github.com/jhoicas/saas-backoffice/pkg/jwt"
	"github.com/jhoicas/saas-backoffice/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// EntitlementResolver fuente de los módulos vigentes (usecase.ModuleService).
type EntitlementResolver interface {
	ActiveModuleTypes(ctx context.Context, companyID, userID string, asOf *time.Time) ([]entity.ModuleType, error)
}

// AuthUseCase casos de uso de autenticación: registro, login y emisión de tokens con capacidades.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	roleRepo    repository.UserRoleRepository
	companyRepo repository.CompanyRepository
	resolver    EntitlementResolver
	overrides   entitlement.RoleOverrides
	jwtCfg      JWTConfig
	log         *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	roleRepo repository.UserRoleRepository,
	companyRepo repository.CompanyRepository,
	resolver EntitlementResolver,
	overrides entitlement.RoleOverrides,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	if overrides == nil {
		overrides = entitlement.DefaultRoleOverrides()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		companyRepo: companyRepo,
		resolver:    resolver,
		overrides:   overrides,
		jwtCfg:      jwtCfg,
		log:         log.Component("auth"),
	}
}

// RegisterUser crea un usuario (bcrypt) y le asigna un rol en la empresa indicada.
// Devuelve ErrEmailAlreadyExists si el email ya existe y ErrNotFound si la empresa no existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}
	role := in.Role
	if role == "" {
		role = entity.RoleMember
	}
	if role == entity.RoleGod {
		return nil, domain.ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	name := in.Name
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.roleRepo.Assign(ctx, &entity.UserRole{UserID: user.ID, CompanyID: in.CompanyID, Role: role, CreatedAt: now}); err != nil {
		return nil, fmt.Errorf("asignar rol: %w", err)
	}
	resp := toUserResponse(user)
	resp.Roles = []string{role}
	return resp, nil
}

// Login verifica email/password y emite el token para la empresa pedida (por defecto la de origen).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	companyID := in.CompanyID
	if companyID == "" {
		companyID = user.CompanyID
	}
	return uc.issue(ctx, user, companyID)
}

// IssueToken reemite el token del usuario para otra empresa a la que pertenece.
func (uc *AuthUseCase) IssueToken(ctx context.Context, userID, companyID string) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	return uc.issue(ctx, user, companyID)
}

// issue arma las capacidades (ledger + overrides de rol) y firma el token.
// Si el resolver falla no se emite token; nunca se firma una lista vacía por un fallo del store.
func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User, companyID string) (*dto.LoginResponse, error) {
	roles, err := uc.roleRepo.ListRoles(ctx, user.ID, companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: listar roles: %w", domain.ErrPersistence, err)
	}
	if len(roles) == 0 {
		return nil, domain.ErrPermissionDenied
	}
	types, err := uc.resolver.ActiveModuleTypes(ctx, companyID, user.ID, nil)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Str("company_id", companyID).Msg("no se pudieron resolver los módulos para el token")
		return nil, err
	}
	modules := uc.overrides.Capabilities(types, roles)

	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Subject{
		UserID:    user.ID,
		CompanyID: companyID,
		Roles:     roles,
		Modules:   modules,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("company_id", companyID).Strs("modules", modules).Msg("token emitido")

	resp := toUserResponse(user)
	resp.Roles = roles
	return &dto.LoginResponse{
		Token:     token,
		CompanyID: companyID,
		Roles:     roles,
		Modules:   modules,
		User:      *resp,
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
