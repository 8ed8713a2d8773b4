// Package dynamics es el adaptador de lectura de la Web API de Dynamics 365.
//
// Autenticación: OAuth2 client credentials contra Entra ID. El token se cachea y
// renueva en el transporte (golang.org/x/oauth2), no se pide uno por llamada.
package dynamics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa CRMClient.
var _ ports.CRMClient = (*Client)(nil)

const (
	apiPath         = "/api/data/v9.2/"
	maxProjects     = 50
	unnamedProject  = "Нэргүй проект"
	maxResponseSize = 1 << 20
)

// GUIDCache traducción código de empresa → GUID de go_clientcompany.
type GUIDCache interface {
	Get(code string) (string, bool)
	Set(code, guid string)
}

// Config parámetros de conexión.
type Config struct {
	InstanceURL  string // https://<org>.crm.dynamics.com
	TenantID     string
	ClientID     string
	ClientSecret string
	TokenURL     string // vacío: endpoint v2.0 del tenant
	Timeout      time.Duration
}

// Client adaptador CRM.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      GUIDCache
}

// NewClient construye el cliente. cache puede ser nil (sin caché).
func NewClient(cfg Config, cache GUIDCache) *Client {
	instance := strings.TrimRight(cfg.InstanceURL, "/")
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{instance + "/.default"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	base := &http.Client{Timeout: timeout}
	hc := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	hc.Timeout = timeout

	return &Client{baseURL: instance + apiPath, httpClient: hc, cache: cache}
}

type clientCompany struct {
	ID string `json:"go_clientcompanyid"`
}

type project struct {
	ID          string    `json:"msdyn_projectid"`
	Subject     *string   `json:"msdyn_subject"`
	CompanyName *string   `json:"go_company_name"`
	CreatedOn   time.Time `json:"createdon"`
	StatusCode  int       `json:"statuscode"`
	StateCode   int       `json:"statecode"`
}

type collection[T any] struct {
	Value []T `json:"value"`
}

// ProjectsByCompanyCode traduce el código a GUID (con caché) y lista hasta 50 proyectos,
// el más reciente primero.
func (c *Client) ProjectsByCompanyCode(ctx context.Context, code string) ([]dto.CRMProjectDTO, error) {
	if code == "" {
		return []dto.CRMProjectDTO{}, nil
	}
	guid, found, err := c.companyGUID(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return []dto.CRMProjectDTO{}, nil
	}

	q := url.Values{}
	q.Set("$select", "msdyn_projectid,msdyn_subject,go_company_name,createdon,statuscode,statecode")
	q.Set("$filter", "_go_companyid_value eq "+guid)
	q.Set("$orderby", "createdon desc")
	q.Set("$top", fmt.Sprint(maxProjects))

	var res collection[project]
	if err := c.get(ctx, "msdyn_projects", q, &res); err != nil {
		return nil, err
	}

	out := make([]dto.CRMProjectDTO, 0, len(res.Value))
	for _, p := range res.Value {
		name := unnamedProject
		if p.Subject != nil && *p.Subject != "" {
			name = *p.Subject
		}
		var companyName string
		if p.CompanyName != nil {
			companyName = *p.CompanyName
		}
		out = append(out, dto.CRMProjectDTO{
			ID:         p.ID,
			Name:       name,
			Code:       companyName,
			CreatedOn:  p.CreatedOn,
			StatusCode: p.StatusCode,
			StateCode:  p.StateCode,
		})
	}
	return out, nil
}

// companyGUID devuelve found=false si el CRM no tiene esa empresa. Los "no encontrado"
// no se cachean para que una empresa dada de alta después aparezca sin esperar al TTL.
func (c *Client) companyGUID(ctx context.Context, code string) (string, bool, error) {
	if c.cache != nil {
		if guid, ok := c.cache.Get(code); ok {
			return guid, true, nil
		}
	}

	q := url.Values{}
	q.Set("$select", "go_clientcompanyid")
	q.Set("$filter", "go_companyid eq '"+strings.ReplaceAll(code, "'", "''")+"'")
	q.Set("$top", "1")

	var res collection[clientCompany]
	if err := c.get(ctx, "go_clientcompanies", q, &res); err != nil {
		return "", false, err
	}
	if len(res.Value) == 0 {
		return "", false, nil
	}
	id, err := uuid.Parse(res.Value[0].ID)
	if err != nil {
		return "", false, fmt.Errorf("%w: dynamics: GUID inválido %q", domain.ErrUpstream, res.Value[0].ID)
	}
	guid := id.String()
	if c.cache != nil {
		c.cache.Set(code, guid)
	}
	return guid, true, nil
}

func (c *Client) get(ctx context.Context, entitySet string, q url.Values, out any) error {
	endpoint := c.baseURL + entitySet + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dynamics: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: dynamics %s: %v", domain.ErrUpstream, entitySet, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: dynamics %s: leer respuesta: %v", domain.ErrUpstream, entitySet, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().Str("entity_set", entitySet).Int("status", resp.StatusCode).Bytes("body", truncate(body, 512)).Msg("dynamics respondió con error")
		return fmt.Errorf("%w: dynamics %s HTTP %d", domain.ErrUpstream, entitySet, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: dynamics %s: deserializar: %v", domain.ErrUpstream, entitySet, err)
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
