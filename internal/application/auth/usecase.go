// Package auth implementa el flujo de autenticación del portal: registro, login,
// selección de empresa y proyecto, cambio de contraseña forzado o voluntario y
// reseteo administrativo.
//
// El estado del flujo no se persiste: lo determina el perfil del token que
// presenta el llamador (ver pkg/jwt).
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/credential"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
	"github.com/jhoicas/audit-portal-api/pkg/jwt"
)

// Estrategias de unicidad de la identidad.
const (
	IdentityScopeCompany = "company"
	IdentityScopeGlobal  = "global"
)

// HashCost factor de bcrypt para todas las contraseñas.
const HashCost = 10

// TokenIssuer es lo que el caso de uso necesita del emisor de tokens.
type TokenIssuer interface {
	Issue(p jwt.Principal) (string, error)
	TTL(p jwt.Principal) time.Duration
}

// TxRunner ejecuta el alta de usuario y sus concesiones en una sola transacción.
type TxRunner interface {
	RunRegistration(ctx context.Context, fn func(users repository.UserRepository, access repository.AccessRepository) error) error
}

// Config reglas del flujo.
type Config struct {
	IdentityScope string
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	projectRepo repository.ProjectRepository
	accessRepo  repository.AccessRepository
	tx          TxRunner
	tokens      TokenIssuer
	cfg         Config
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	projectRepo repository.ProjectRepository,
	accessRepo repository.AccessRepository,
	tx TxRunner,
	tokens TokenIssuer,
	cfg Config,
) *AuthUseCase {
	if cfg.IdentityScope == "" {
		cfg.IdentityScope = IdentityScopeCompany
	}
	return &AuthUseCase{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		projectRepo: projectRepo,
		accessRepo:  accessRepo,
		tx:          tx,
		tokens:      tokens,
		cfg:         cfg,
		now:         time.Now,
	}
}

// dummyHash se compara cuando el usuario no existe para que el tiempo de respuesta
// no revele si la identidad está registrada.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("no-such-user-placeholder"), HashCost)
	if err != nil {
		panic("auth: generar hash de relleno: " + err.Error())
	}
	return h
})

// RegisterUser crea un usuario con acceso a su empresa (rol Member) y, si se indica,
// al proyecto. No inicia sesión.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	username := credential.NormalizeIdentity(in.Username)
	email := credential.NormalizeIdentity(in.Email)
	companyID := credential.NormalizeIdentity(in.CompanyID)
	projectID := credential.NormalizeIdentity(in.ProjectID)

	if username == "" || in.Password == "" || companyID == "" {
		return nil, fmt.Errorf("%w: username, password y company_id son requeridos", domain.ErrInvalidInput)
	}
	if err := credential.ValidateStrength(in.Password); err != nil {
		return nil, err
	}

	companyID, ok := canonicalID(companyID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if projectID != "" {
		if projectID, ok = canonicalID(projectID); !ok {
			return nil, fmt.Errorf("%w: project_id inválido", domain.ErrInvalidInput)
		}
		project, err := uc.projectRepo.GetByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project == nil || project.CompanyID != companyID {
			return nil, fmt.Errorf("%w: el proyecto no pertenece a la empresa", domain.ErrInvalidInput)
		}
	}

	existing, err := uc.lookup(ctx, username, companyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Username:     username,
		Email:        email,
		Name:         credential.NormalizeIdentity(in.Name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// El chequeo previo y el insert no son atómicos: la restricción única del store
	// convierte la carrera perdida en ErrDuplicateUser.
	err = uc.tx.RunRegistration(ctx, func(users repository.UserRepository, access repository.AccessRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		if err := access.GrantCompany(ctx, &entity.CompanyAccess{
			UserID: user.ID, CompanyID: companyID, Role: entity.RoleMember, CreatedAt: now,
		}); err != nil {
			return err
		}
		if projectID == "" {
			return nil
		}
		return access.GrantProject(ctx, &entity.ProjectAccess{
			UserID: user.ID, ProjectID: projectID, CompanyID: companyID, Role: entity.RoleMember, CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("company_id", companyID).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// Login verifica usuario/contraseña.
//
// Usuario inexistente y contraseña incorrecta devuelven el mismo ErrInvalidCredentials.
// Si el usuario debe cambiar la contraseña, solo recibe un token de cambio.
// En otro caso recibe una sesión sin empresa y la lista de empresas accesibles.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := credential.NormalizeIdentity(in.Username)
	companyID := credential.NormalizeIdentity(in.CompanyID)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username y password son requeridos", domain.ErrInvalidInput)
	}
	if uc.cfg.IdentityScope == IdentityScopeCompany && companyID == "" {
		return nil, fmt.Errorf("%w: company_id es requerido", domain.ErrInvalidInput)
	}

	var user *entity.User
	if id, ok := canonicalID(companyID); ok || uc.cfg.IdentityScope == IdentityScopeGlobal {
		var err error
		if user, err = uc.lookup(ctx, username, id); err != nil {
			return nil, err
		}
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(in.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if user.MustChangePassword {
		p := jwt.PasswordChange{UserID: user.ID}
		token, err := uc.tokens.Issue(p)
		if err != nil {
			return nil, fmt.Errorf("emitir token de cambio: %w", err)
		}
		log.Info().Str("user_id", user.ID).Msg("login con cambio de contraseña obligatorio")
		return &dto.LoginResponse{
			Token:                  token,
			ExpiresIn:              uc.expiresIn(p),
			PasswordChangeRequired: true,
		}, nil
	}

	grants, err := uc.accessRepo.ListCompanies(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	p := jwt.Session{UserID: user.ID, Username: user.Username, Admin: user.IsAdmin}
	token, err := uc.tokens.Issue(p)
	if err != nil {
		return nil, fmt.Errorf("emitir sesión: %w", err)
	}

	companies := make([]dto.CompanyResponse, 0, len(grants))
	for _, g := range grants {
		companies = append(companies, toCompanyResponse(g.Company, g.Role))
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.expiresIn(p),
		User:      toUserResponse(user),
		Companies: companies,
	}, nil
}

// SelectCompany emite una sesión con la empresa elegida si existe la concesión.
// El token anterior no se invalida: simplemente carece del claim de empresa.
func (uc *AuthUseCase) SelectCompany(ctx context.Context, principal jwt.Principal, companyID string) (*dto.SelectCompanyResponse, error) {
	session, ok := jwt.FullSession(principal)
	if !ok {
		return nil, domain.ErrForbidden
	}
	companyID = credential.NormalizeIdentity(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("%w: company_id es requerido", domain.ErrInvalidInput)
	}
	companyID, ok = canonicalID(companyID)
	if !ok {
		return nil, domain.ErrForbidden
	}

	grant, err := uc.accessRepo.GetCompanyAccess(ctx, session.UserID, companyID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrForbidden
	}
	projects, err := uc.accessRepo.ListProjects(ctx, session.UserID, companyID)
	if err != nil {
		return nil, err
	}

	p := jwt.CompanySession{Session: session, CompanyID: companyID, Role: grant.Role}
	token, err := uc.tokens.Issue(p)
	if err != nil {
		return nil, fmt.Errorf("emitir sesión de empresa: %w", err)
	}

	out := &dto.SelectCompanyResponse{
		Token:     token,
		ExpiresIn: uc.expiresIn(p),
		Company:   toCompanyResponse(*company, grant.Role),
		Projects:  make([]dto.ProjectResponse, 0, len(projects)),
	}
	for _, pg := range projects {
		out.Projects = append(out.Projects, dto.ProjectResponse{ID: pg.Project.ID, Name: pg.Project.Name, Role: pg.Role})
	}
	return out, nil
}

// SelectProject emite una sesión con el proyecto elegido. Requiere una sesión con
// empresa, concesión sobre el proyecto y que el proyecto pertenezca a esa empresa.
func (uc *AuthUseCase) SelectProject(ctx context.Context, principal jwt.Principal, projectID string) (*dto.SelectProjectResponse, error) {
	company, ok := jwt.Company(principal)
	if !ok {
		return nil, domain.ErrForbidden
	}
	projectID = credential.NormalizeIdentity(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("%w: project_id es requerido", domain.ErrInvalidInput)
	}
	projectID, ok = canonicalID(projectID)
	if !ok {
		return nil, domain.ErrForbidden
	}

	grant, err := uc.accessRepo.GetProjectAccess(ctx, company.UserID, projectID)
	if err != nil {
		return nil, err
	}
	if grant == nil || grant.CompanyID != company.CompanyID {
		return nil, domain.ErrForbidden
	}
	project, err := uc.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrForbidden
	}

	p := jwt.ProjectSession{CompanySession: company, ProjectID: projectID, ProjectRole: grant.Role}
	token, err := uc.tokens.Issue(p)
	if err != nil {
		return nil, fmt.Errorf("emitir sesión de proyecto: %w", err)
	}
	return &dto.SelectProjectResponse{
		Token:     token,
		ExpiresIn: uc.expiresIn(p),
		Project:   dto.ProjectResponse{ID: project.ID, Name: project.Name, Role: grant.Role},
	}, nil
}

// ChangePassword completa el cambio obligatorio. Solo acepta el token de cambio y exige
// además la contraseña temporal actual. No emite sesión: el usuario vuelve a hacer login.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, principal jwt.Principal, in dto.ChangePasswordRequest) error {
	pc, ok := principal.(jwt.PasswordChange)
	if !ok {
		return domain.ErrForbidden
	}
	user, err := uc.verifyCurrent(ctx, pc.UserID, in.CurrentPassword)
	if err != nil {
		return err
	}
	if !user.MustChangePassword {
		return fmt.Errorf("%w: la contraseña ya fue cambiada", domain.ErrConflict)
	}
	if err := credential.ValidateStrength(in.NewPassword); err != nil {
		return err
	}
	if err := uc.storePassword(ctx, user.ID, in.NewPassword, false); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Msg("cambio de contraseña obligatorio completado")
	return nil
}

// ChangeOwnPassword cambio voluntario desde una sesión completa.
func (uc *AuthUseCase) ChangeOwnPassword(ctx context.Context, principal jwt.Principal, in dto.ChangePasswordRequest) error {
	session, ok := jwt.FullSession(principal)
	if !ok {
		return domain.ErrForbidden
	}
	user, err := uc.verifyCurrent(ctx, session.UserID, in.CurrentPassword)
	if err != nil {
		return err
	}
	if err := credential.ValidateStrength(in.NewPassword); err != nil {
		return err
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser distinta de la actual", domain.ErrWeakPassword)
	}
	if err := uc.storePassword(ctx, user.ID, in.NewPassword, false); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Msg("contraseña cambiada")
	return nil
}

// AdminResetPassword fija una contraseña temporal y obliga a cambiarla en el próximo login.
// La autorización del administrador la resuelve la capa HTTP (RequireAdmin).
// No notifica al usuario: la contraseña temporal se comunica por otro canal.
func (uc *AuthUseCase) AdminResetPassword(ctx context.Context, userID, temporaryPassword string) error {
	userID = credential.NormalizeIdentity(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id es requerido", domain.ErrInvalidInput)
	}
	if err := credential.ValidateTemporary(temporaryPassword); err != nil {
		return err
	}
	userID, ok := canonicalID(userID)
	if !ok {
		return domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if err := uc.storePassword(ctx, user.ID, temporaryPassword, true); err != nil {
		return err
	}
	log.Warn().Str("user_id", user.ID).Msg("contraseña reseteada por administrador")
	return nil
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	userID, ok := canonicalID(userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toUserResponse(user), nil
}

// lookup busca la identidad según la estrategia configurada.
func (uc *AuthUseCase) lookup(ctx context.Context, username, companyID string) (*entity.User, error) {
	if uc.cfg.IdentityScope == IdentityScopeGlobal {
		return uc.userRepo.GetByUsername(ctx, username)
	}
	return uc.userRepo.GetByUsernameAndCompany(ctx, username, companyID)
}

func (uc *AuthUseCase) verifyCurrent(ctx context.Context, userID, current string) (*entity.User, error) {
	if current == "" {
		return nil, domain.ErrInvalidCredentials
	}
	userID, ok := canonicalID(userID)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("comparar hash: %w", err)
	}
	return user, nil
}

// canonicalID los IDs del store son UUID: uno malformado no puede existir y no se consulta.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// storePassword guarda el hash. Con mustChange=true (reseteo) la fecha de cambio se limpia.
func (uc *AuthUseCase) storePassword(ctx context.Context, userID, password string, mustChange bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	var changedAt *time.Time
	if !mustChange {
		now := uc.now()
		changedAt = &now
	}
	return uc.userRepo.UpdatePassword(ctx, userID, string(hash), mustChange, changedAt)
}

func (uc *AuthUseCase) expiresIn(p jwt.Principal) int {
	return int(uc.tokens.TTL(p).Seconds())
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:                 u.ID,
		CompanyID:          u.CompanyID,
		Username:           u.Username,
		Email:              u.Email,
		Name:               u.Name,
		IsAdmin:            u.IsAdmin,
		MustChangePassword: u.MustChangePassword,
		PasswordChangedAt:  u.PasswordChangedAt,
		CreatedAt:          u.CreatedAt,
	}
}

func toCompanyResponse(c entity.Company, role string) dto.CompanyResponse {
	return dto.CompanyResponse{ID: c.ID, Name: c.Name, NameLocal: c.NameLocal, Role: role}
}
