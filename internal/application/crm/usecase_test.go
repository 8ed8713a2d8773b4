package crm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/audit-portal-api/internal/application/dto"
	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/entity"
)

type fakeCompanies map[string]*entity.Company

func (f fakeCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) { return f[id], nil }

type fakeCRM struct {
	calls    []string
	projects []dto.CRMProjectDTO
	err      error
}

func (f *fakeCRM) ProjectsByCompanyCode(_ context.Context, code string) ([]dto.CRMProjectDTO, error) {
	f.calls = append(f.calls, code)
	return f.projects, f.err
}

func TestProjects(t *testing.T) {
	companies := fakeCompanies{
		"c1": {ID: "c1", CRMCode: "GO-001"},
		"c2": {ID: "c2"},
	}
	client := &fakeCRM{projects: []dto.CRMProjectDTO{{ID: "guid-1", Name: "Audit FY25"}}}
	uc := NewUseCase(companies, client)

	got, err := uc.Projects(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"GO-001"}, client.calls)

	got, err = uc.Projects(context.Background(), "c2")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Len(t, client.calls, 1, "sin código CRM no se llama al cliente")

	_, err = uc.Projects(context.Background(), "c9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjects_ErrorUpstream(t *testing.T) {
	companies := fakeCompanies{"c1": {ID: "c1", CRMCode: "GO-001"}}
	uc := NewUseCase(companies, &fakeCRM{err: fmt.Errorf("%w: 503", domain.ErrUpstream)})

	_, err := uc.Projects(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = NewUseCase(companies, nil).Projects(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
