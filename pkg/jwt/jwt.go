// Package jwt emite y verifica los tokens del portal.
//
// Cada token corresponde exactamente a un perfil (Principal):
//
//	PasswordChange  → solo sirve para fijar una contraseña nueva (scope=password_change_only, 15m)
//	Session         → usuario autenticado, sin empresa seleccionada (2h)
//	CompanySession  → + company_id y rol en la empresa (2h)
//	ProjectSession  → + project_id y rol en el proyecto (2h)
//
// Los tokens no se guardan en servidor: su validez depende solo de la firma y de exp.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopePasswordChange discrimina el token restringido al cambio de contraseña.
const ScopePasswordChange = "password_change_only"

// ErrInvalidToken se devuelve ante firma incorrecta, token expirado o claims incoherentes.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Claims es la forma serializada del token. Los campos vacíos se omiten para que
// cada perfil lleve solo lo que le corresponde.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
	Admin       bool   `json:"admin,omitempty"`
	CompanyID   string `json:"company_id,omitempty"`
	Role        string `json:"role,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	ProjectRole string `json:"project_role,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// Principal es la identidad verificada que lleva un token.
// La interfaz está sellada: solo los tipos de este paquete la implementan.
type Principal interface {
	Subject() string
	claims() Claims
}

// PasswordChange identidad que debe cambiar su contraseña antes de obtener una sesión.
type PasswordChange struct {
	UserID string
}

// Session sesión completa sin empresa seleccionada.
type Session struct {
	UserID   string
	Username string
	Admin    bool
}

// CompanySession sesión con empresa seleccionada.
type CompanySession struct {
	Session
	CompanyID string
	Role      string
}

// ProjectSession sesión con empresa y proyecto seleccionados.
type ProjectSession struct {
	CompanySession
	ProjectID   string
	ProjectRole string
}

func (p PasswordChange) Subject() string { return p.UserID }
func (s Session) Subject() string        { return s.UserID }

func (p PasswordChange) claims() Claims {
	return Claims{UserID: p.UserID, Scope: ScopePasswordChange}
}

func (s Session) claims() Claims {
	return Claims{UserID: s.UserID, Username: s.Username, Admin: s.Admin}
}

func (c CompanySession) claims() Claims {
	cl := c.Session.claims()
	cl.CompanyID = c.CompanyID
	cl.Role = c.Role
	return cl
}

func (p ProjectSession) claims() Claims {
	cl := p.CompanySession.claims()
	cl.ProjectID = p.ProjectID
	cl.ProjectRole = p.ProjectRole
	return cl
}

// FullSession devuelve la sesión base de cualquier perfil de sesión completa.
// ok es false para PasswordChange.
func FullSession(p Principal) (Session, bool) {
	switch v := p.(type) {
	case Session:
		return v, true
	case CompanySession:
		return v.Session, true
	case ProjectSession:
		return v.Session, true
	default:
		return Session{}, false
	}
}

// Company devuelve la parte de empresa si el perfil la tiene.
func Company(p Principal) (CompanySession, bool) {
	switch v := p.(type) {
	case CompanySession:
		return v, true
	case ProjectSession:
		return v.CompanySession, true
	default:
		return CompanySession{}, false
	}
}

// Config parámetros del emisor.
type Config struct {
	Secret            string
	Issuer            string
	SessionTTL        time.Duration
	PasswordChangeTTL time.Duration
}

// Issuer firma y verifica tokens con un secreto compartido (HS256).
type Issuer struct {
	cfg Config
	now func() time.Time
}

// NewIssuer construye el emisor. Devuelve error si el secreto está vacío.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// TTL devuelve la duración con la que se emiten tokens para el perfil dado.
func (i *Issuer) TTL(p Principal) time.Duration {
	if _, ok := p.(PasswordChange); ok {
		return i.cfg.PasswordChangeTTL
	}
	return i.cfg.SessionTTL
}

// Issue firma el perfil con exp = now + ttl del perfil.
func (i *Issuer) Issue(p Principal) (string, error) {
	if p == nil || p.Subject() == "" {
		return "", fmt.Errorf("jwt: principal sin usuario")
	}
	return i.sign(p.claims(), i.TTL(p))
}

func (i *Issuer) sign(claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.cfg.Issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.cfg.Secret))
}

// Verify valida firma y expiración y reconstruye el perfil.
// No consulta ningún almacenamiento.
func (i *Issuer) Verify(tokenString string) (Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(i.cfg.Secret), nil
	},
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims)
}

// principalFromClaims reconstruye el perfil; un claim set que no encaja en ninguno es inválido.
func principalFromClaims(c Claims) (Principal, error) {
	if c.UserID == "" {
		return nil, fmt.Errorf("%w: sin user_id", ErrInvalidToken)
	}
	switch c.Scope {
	case ScopePasswordChange:
		if c.CompanyID != "" || c.ProjectID != "" || c.Role != "" || c.ProjectRole != "" || c.Admin {
			return nil, fmt.Errorf("%w: token de cambio de contraseña con claims de sesión", ErrInvalidToken)
		}
		return PasswordChange{UserID: c.UserID}, nil
	case "":
	default:
		return nil, fmt.Errorf("%w: scope desconocido %q", ErrInvalidToken, c.Scope)
	}

	session := Session{UserID: c.UserID, Username: c.Username, Admin: c.Admin}
	if c.CompanyID == "" {
		if c.ProjectID != "" {
			return nil, fmt.Errorf("%w: project_id sin company_id", ErrInvalidToken)
		}
		return session, nil
	}
	company := CompanySession{Session: session, CompanyID: c.CompanyID, Role: c.Role}
	if c.ProjectID == "" {
		return company, nil
	}
	return ProjectSession{CompanySession: company, ProjectID: c.ProjectID, ProjectRole: c.ProjectRole}, nil
}
