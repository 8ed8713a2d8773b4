package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

// memStore implementa en memoria todos los puertos que usa el caso de uso.
type memStore struct {
	mu             sync.Mutex
	scope          string
	users          map[string]*entity.User
	companies      map[string]*entity.Company
	projects       map[string]*entity.Project
	companyAccess  map[[2]string]entity.CompanyAccess
	projectAccess  map[[2]string]entity.ProjectAccess
	failNextCreate error
}

func newMemStore(scope string) *memStore {
	return &memStore{
		scope:         scope,
		users:         map[string]*entity.User{},
		companies:     map[string]*entity.Company{},
		projects:      map[string]*entity.Project{},
		companyAccess: map[[2]string]entity.CompanyAccess{},
		projectAccess: map[[2]string]entity.ProjectAccess{},
	}
}

func (m *memStore) addCompany(id, name string) {
	m.companies[id] = &entity.Company{ID: id, Name: name, CreatedAt: time.Now()}
}

func (m *memStore) addProject(id, companyID, name string) {
	m.projects[id] = &entity.Project{ID: id, CompanyID: companyID, Name: name, CreatedAt: time.Now()}
}

// uuidParams falla como pgx al codificar un parámetro uuid malformado.
func uuidParams(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("cannot encode %q as uuid: %w", id, err)
		}
	}
	return nil
}

// ── UserRepository ───────────────────────────────────────────────

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextCreate != nil {
		err := r.failNextCreate
		r.failNextCreate = nil
		return err
	}
	for _, existing := range r.users {
		if !strings.EqualFold(existing.Username, u.Username) {
			continue
		}
		if r.scope == IdentityScopeGlobal || existing.CompanyID == u.CompanyID {
			return domain.ErrDuplicateUser
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if err := uuidParams(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) GetByUsernameAndCompany(_ context.Context, username, companyID string) (*entity.User, error) {
	if err := uuidParams(companyID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.CompanyID == companyID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) UpdatePassword(_ context.Context, userID, hash string, mustChange bool, changedAt *time.Time) error {
	if err := uuidParams(userID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.MustChangePassword = mustChange
	u.PasswordChangedAt = changedAt
	return nil
}

// ── Company/Project ──────────────────────────────────────────────

type memCompanies struct{ *memStore }

func (r memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	if err := uuidParams(id); err != nil {
		return nil, err
	}
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type memProjects struct{ *memStore }

func (r memProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	if err := uuidParams(id); err != nil {
		return nil, err
	}
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

// ── AccessRepository ─────────────────────────────────────────────

type memAccess struct{ *memStore }

func (r memAccess) GrantCompany(_ context.Context, g *entity.CompanyAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companyAccess[[2]string{g.UserID, g.CompanyID}] = *g
	return nil
}

func (r memAccess) GrantProject(_ context.Context, g *entity.ProjectAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projectAccess[[2]string{g.UserID, g.ProjectID}] = *g
	return nil
}

func (r memAccess) GetCompanyAccess(_ context.Context, userID, companyID string) (*entity.CompanyAccess, error) {
	if err := uuidParams(userID, companyID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.companyAccess[[2]string{userID, companyID}]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r memAccess) GetProjectAccess(_ context.Context, userID, projectID string) (*entity.ProjectAccess, error) {
	if err := uuidParams(userID, projectID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.projectAccess[[2]string{userID, projectID}]
	if !ok {
		return nil, nil
	}
	if p, ok := r.projects[projectID]; ok {
		g.CompanyID = p.CompanyID
	}
	return &g, nil
}

func (r memAccess) ListCompanies(_ context.Context, userID string) ([]entity.CompanyGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CompanyGrant
	for k, g := range r.companyAccess {
		if k[0] != userID {
			continue
		}
		if c, ok := r.companies[g.CompanyID]; ok {
			out = append(out, entity.CompanyGrant{Company: *c, Role: g.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company.Name < out[j].Company.Name })
	return out, nil
}

func (r memAccess) ListProjects(_ context.Context, userID, companyID string) ([]entity.ProjectGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ProjectGrant
	for k, g := range r.projectAccess {
		if k[0] != userID {
			continue
		}
		if p, ok := r.projects[g.ProjectID]; ok && p.CompanyID == companyID {
			out = append(out, entity.ProjectGrant{Project: *p, Role: g.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Project.Name < out[j].Project.Name })
	return out, nil
}

// ── TxRunner ─────────────────────────────────────────────────────

// RunRegistration no es atómico en memoria; basta para los tests del flujo.
func (m *memStore) RunRegistration(_ context.Context, fn func(repository.UserRepository, repository.AccessRepository) error) error {
	return fn(memUsers{m}, memAccess{m})
}
