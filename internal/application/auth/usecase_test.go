package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
	"github.com/jhoicas/audit-portal-api/pkg/jwt"
)

const (
	companyA = "11111111-1111-1111-1111-111111111111"
	companyB = "22222222-2222-2222-2222-222222222222"
	projectA = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	projectB = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"

	strongPassword = "Sup3r-secret"
)

type fixture struct {
	uc     *AuthUseCase
	store  *memStore
	issuer *jwt.Issuer
}

func newFixture(t *testing.T, scope string) *fixture {
	t.Helper()
	store := newMemStore(scope)
	store.addCompany(companyA, "Alpha LLC")
	store.addCompany(companyB, "Beta LLC")
	store.addProject(projectA, companyA, "Audit 2025")
	store.addProject(projectB, companyB, "Audit Beta")

	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:            "test-secret",
		Issuer:            "audit-portal-test",
		SessionTTL:        2 * time.Hour,
		PasswordChangeTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	uc := NewAuthUseCase(memUsers{store}, memCompanies{store}, memProjects{store}, memAccess{store}, store, issuer, Config{IdentityScope: scope})
	return &fixture{uc: uc, store: store, issuer: issuer}
}

func (f *fixture) register(t *testing.T, username, projectID string) *dto.UserResponse {
	t.Helper()
	u, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Username:  username,
		Password:  strongPassword,
		Email:     username + "@example.com",
		CompanyID: companyA,
		ProjectID: projectID,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, username, password string) *dto.LoginResponse {
	t.Helper()
	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: username, Password: password, CompanyID: companyA})
	require.NoError(t, err)
	return res
}

func (f *fixture) verify(t *testing.T, token string) jwt.Principal {
	t.Helper()
	p, err := f.issuer.Verify(token)
	require.NoError(t, err)
	return p
}

func TestRegister_CreaUsuarioConConcesiones(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	u := f.register(t, "  bat  ", projectA)

	assert.Equal(t, "bat", u.Username)
	assert.False(t, u.MustChangePassword)

	stored := f.store.users[u.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, strongPassword, stored.PasswordHash)

	cg, _ := memAccess{f.store}.GetCompanyAccess(context.Background(), u.ID, companyA)
	require.NotNil(t, cg)
	assert.Equal(t, entity.RoleMember, cg.Role)
	pg, _ := memAccess{f.store}.GetProjectAccess(context.Background(), u.ID, projectA)
	require.NotNil(t, pg)
}

func TestRegister_Errores(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	f.register(t, "bat", "")
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"duplicado", dto.RegisterRequest{Username: "bat", Password: strongPassword, CompanyID: companyA}, domain.ErrDuplicateUser},
		{"contraseña débil", dto.RegisterRequest{Username: "dorj", Password: "alllowercase", CompanyID: companyA}, domain.ErrWeakPassword},
		{"sin empresa", dto.RegisterRequest{Username: "dorj", Password: strongPassword}, domain.ErrInvalidInput},
		{"empresa inexistente", dto.RegisterRequest{Username: "dorj", Password: strongPassword, CompanyID: "nope"}, domain.ErrNotFound},
		{"proyecto de otra empresa", dto.RegisterRequest{Username: "dorj", Password: strongPassword, CompanyID: companyA, ProjectID: projectB}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RegisterUser(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegister_MismoUsuarioEnOtraEmpresa(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	f.register(t, "bat", "")

	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Username: "bat", Password: strongPassword, CompanyID: companyB})
	assert.NoError(t, err)
}

func TestRegister_CarreraConvertidaEnDuplicado(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	f.store.failNextCreate = domain.ErrDuplicateUser

	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Username: "bat", Password: strongPassword, CompanyID: companyA})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestLogin_CredencialesInvalidasIndistinguibles(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	f.register(t, "bat", "")
	ctx := context.Background()

	_, errUnknown := f.uc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: strongPassword, CompanyID: companyA})
	_, errWrong := f.uc.Login(ctx, dto.LoginRequest{Username: "bat", Password: "Wrong-pass1", CompanyID: companyA})

	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_RequiereEmpresaConIdentidadPorEmpresa(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "bat", Password: strongPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_IdentidadGlobal(t *testing.T) {
	f := newFixture(t, IdentityScopeGlobal)
	f.register(t, "bat", "")

	_, err := f.uc.RegisterUser(context.Background(), dto.RegisterRequest{Username: "bat", Password: strongPassword, CompanyID: companyB})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "bat", Password: strongPassword})
	require.NoError(t, err)
	assert.False(t, res.PasswordChangeRequired)
}

func TestLogin_SesionSinEmpresaYListaDeEmpresas(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	u := f.register(t, "bat", "")

	res := f.login(t, "bat", strongPassword)
	assert.False(t, res.PasswordChangeRequired)
	assert.Equal(t, int((2 * time.Hour).Seconds()), res.ExpiresIn)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, companyA, res.Companies[0].ID)
	assert.Equal(t, entity.RoleMember, res.Companies[0].Role)

	p := f.verify(t, res.Token)
	assert.Equal(t, jwt.Session{UserID: u.ID, Username: "bat"}, p)
}

func TestFlujoCompleto_RegistroLoginEmpresaProyecto(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", projectA)

	login := f.login(t, "bat", strongPassword)
	session := f.verify(t, login.Token)

	sel, err := f.uc.SelectCompany(ctx, session, companyA)
	require.NoError(t, err)
	assert.Equal(t, "Alpha LLC", sel.Company.Name)
	require.Len(t, sel.Projects, 1)
	assert.Equal(t, projectA, sel.Projects[0].ID)

	companySession := f.verify(t, sel.Token)
	cs, ok := jwt.Company(companySession)
	require.True(t, ok)
	assert.Equal(t, companyA, cs.CompanyID)
	assert.Equal(t, entity.RoleMember, cs.Role)

	proj, err := f.uc.SelectProject(ctx, companySession, projectA)
	require.NoError(t, err)
	assert.Equal(t, "Audit 2025", proj.Project.Name)

	final := f.verify(t, proj.Token)
	ps, ok := final.(jwt.ProjectSession)
	require.True(t, ok)
	assert.Equal(t, u.ID, ps.UserID)
	assert.Equal(t, companyA, ps.CompanyID)
	assert.Equal(t, projectA, ps.ProjectID)
}

func TestSelectCompany_SinConcesion(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	f.register(t, "bat", "")
	session := f.verify(t, f.login(t, "bat", strongPassword).Token)

	_, err := f.uc.SelectCompany(context.Background(), session, companyB)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSelectCompany_TokenDeCambioRechazado(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	_, err := f.uc.SelectCompany(context.Background(), jwt.PasswordChange{UserID: "u1"}, companyA)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSelectProject_Rechazos(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", projectA)
	// concesión a un proyecto de otra empresa
	require.NoError(t, memAccess{f.store}.GrantProject(ctx, &entity.ProjectAccess{UserID: u.ID, ProjectID: projectB, Role: entity.RoleMember}))

	session := jwt.Session{UserID: u.ID, Username: "bat"}
	company := jwt.CompanySession{Session: session, CompanyID: companyA, Role: entity.RoleMember}

	_, err := f.uc.SelectProject(ctx, session, projectA)
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin empresa seleccionada")

	_, err = f.uc.SelectProject(ctx, jwt.PasswordChange{UserID: u.ID}, projectA)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.SelectProject(ctx, company, projectB)
	assert.ErrorIs(t, err, domain.ErrForbidden, "proyecto de otra empresa")

	_, err = f.uc.SelectProject(ctx, company, "cccccccc-cccc-cccc-cccc-cccccccccccc")
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin concesión")
}

func TestAdminReset_ForzaCambioEnLogin(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", "")

	require.NoError(t, f.uc.AdminResetPassword(ctx, u.ID, "temp1234"))
	stored := f.store.users[u.ID]
	assert.True(t, stored.MustChangePassword)
	assert.Nil(t, stored.PasswordChangedAt)

	_, err := f.uc.Login(ctx, dto.LoginRequest{Username: "bat", Password: strongPassword, CompanyID: companyA})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "la contraseña anterior deja de valer")

	res := f.login(t, "bat", "temp1234")
	assert.True(t, res.PasswordChangeRequired)
	assert.Nil(t, res.User)
	assert.Empty(t, res.Companies)
	assert.Equal(t, int((15 * time.Minute).Seconds()), res.ExpiresIn)
	assert.Equal(t, jwt.PasswordChange{UserID: u.ID}, f.verify(t, res.Token))
}

func TestAdminReset_Errores(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	u := f.register(t, "bat", "")
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.AdminResetPassword(ctx, u.ID, "short"), domain.ErrWeakPassword)
	assert.ErrorIs(t, f.uc.AdminResetPassword(ctx, "missing", "temp1234"), domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.AdminResetPassword(ctx, "", "temp1234"), domain.ErrInvalidInput)
}

func TestChangePassword_FlujoForzado(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", "")
	require.NoError(t, f.uc.AdminResetPassword(ctx, u.ID, "temp1234"))
	change := f.verify(t, f.login(t, "bat", "temp1234").Token)

	err := f.uc.ChangePassword(ctx, change, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "N3w-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = f.uc.ChangePassword(ctx, change, dto.ChangePasswordRequest{CurrentPassword: "temp1234", NewPassword: "alllowercase"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, f.uc.ChangePassword(ctx, change, dto.ChangePasswordRequest{CurrentPassword: "temp1234", NewPassword: "N3w-password"}))
	stored := f.store.users[u.ID]
	assert.False(t, stored.MustChangePassword)
	require.NotNil(t, stored.PasswordChangedAt)

	res := f.login(t, "bat", "N3w-password")
	assert.False(t, res.PasswordChangeRequired)
	_, ok := jwt.FullSession(f.verify(t, res.Token))
	assert.True(t, ok)

	err = f.uc.ChangePassword(ctx, change, dto.ChangePasswordRequest{CurrentPassword: "N3w-password", NewPassword: "Other-pass1"})
	assert.ErrorIs(t, err, domain.ErrConflict, "el token de cambio ya no tiene nada que cambiar")
}

func TestChangePassword_SoloTokenDeCambio(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	u := f.register(t, "bat", "")

	err := f.uc.ChangePassword(context.Background(), jwt.Session{UserID: u.ID}, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w-password"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestChangeOwnPassword(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", "")
	session := jwt.Session{UserID: u.ID, Username: "bat"}

	err := f.uc.ChangeOwnPassword(ctx, session, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: strongPassword})
	assert.ErrorIs(t, err, domain.ErrWeakPassword, "la nueva debe ser distinta")

	err = f.uc.ChangeOwnPassword(ctx, jwt.PasswordChange{UserID: u.ID}, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w-password"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.uc.ChangeOwnPassword(ctx, session, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w-password"}))
	assert.NotNil(t, f.store.users[u.ID].PasswordChangedAt)
	f.login(t, "bat", "N3w-password")
}

func TestMe(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	u := f.register(t, "bat", "")

	me, err := f.uc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bat@example.com", me.Email)

	_, err = f.uc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Entradas límite ──────────────────────────────────────────────

func TestContrasenaMayorDe72Bytes(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	long := "Aa1!" + strings.Repeat("x", 80)

	_, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "dorj", Password: long, CompanyID: companyA})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	u := f.register(t, "bat", "")
	session := jwt.Session{UserID: u.ID, Username: "bat"}
	err = f.uc.ChangeOwnPassword(ctx, session, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: long})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	assert.ErrorIs(t, f.uc.AdminResetPassword(ctx, u.ID, strings.Repeat("t", 73)), domain.ErrWeakPassword)

	require.NoError(t, f.uc.AdminResetPassword(ctx, u.ID, "temp1234"))
	change := f.verify(t, f.login(t, "bat", "temp1234").Token)
	err = f.uc.ChangePassword(ctx, change, dto.ChangePasswordRequest{CurrentPassword: "temp1234", NewPassword: long})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Username: "bat", Password: long, CompanyID: companyA})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestIDsMalformados(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", projectA)
	session := jwt.Session{UserID: u.ID, Username: "bat"}
	companySession := jwt.CompanySession{Session: session, CompanyID: companyA, Role: entity.RoleMember}

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{"register empresa", func() error {
			_, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "dorj", Password: strongPassword, CompanyID: "acme"})
			return err
		}, domain.ErrNotFound},
		{"register proyecto", func() error {
			_, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{Username: "dorj", Password: strongPassword, CompanyID: companyA, ProjectID: "acme"})
			return err
		}, domain.ErrInvalidInput},
		{"login empresa", func() error {
			_, err := f.uc.Login(ctx, dto.LoginRequest{Username: "bat", Password: strongPassword, CompanyID: "acme"})
			return err
		}, domain.ErrInvalidCredentials},
		{"select-company", func() error {
			_, err := f.uc.SelectCompany(ctx, session, "acme")
			return err
		}, domain.ErrForbidden},
		{"select-project", func() error {
			_, err := f.uc.SelectProject(ctx, companySession, "acme")
			return err
		}, domain.ErrForbidden},
		{"admin reset", func() error {
			return f.uc.AdminResetPassword(ctx, "acme", "temp1234")
		}, domain.ErrNotFound},
		{"me", func() error {
			_, err := f.uc.Me(ctx, "acme")
			return err
		}, domain.ErrNotFound},
		{"cambio voluntario", func() error {
			return f.uc.ChangeOwnPassword(ctx, jwt.Session{UserID: "acme"}, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w-password"})
		}, domain.ErrInvalidCredentials},
		{"cambio obligatorio", func() error {
			return f.uc.ChangePassword(ctx, jwt.PasswordChange{UserID: "acme"}, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w-password"})
		}, domain.ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), tc.want)
		})
	}
}

func TestIDsEnMayusculasSeNormalizan(t *testing.T) {
	f := newFixture(t, IdentityScopeCompany)
	ctx := context.Background()
	u := f.register(t, "bat", projectA)
	session := jwt.Session{UserID: u.ID, Username: "bat"}

	res, err := f.uc.SelectCompany(ctx, session, strings.ToUpper(companyA))
	require.NoError(t, err)
	assert.Equal(t, companyA, res.Company.ID)

	cs := f.verify(t, res.Token)
	pr, err := f.uc.SelectProject(ctx, cs, strings.ToUpper(projectA))
	require.NoError(t, err)
	assert.Equal(t, projectA, pr.Project.ID)
}
