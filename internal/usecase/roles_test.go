package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/usecase"
)

type mockRoleRepo struct{ mock.Mock }

func (m *mockRoleRepo) List(ctx domain.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	roles, _ := args.Get(0).([]domain.Role)
	return roles, args.Error(1)
}

func (m *mockRoleRepo) Get(ctx domain.Context, id string) (domain.Role, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *mockRoleRepo) GetByName(ctx domain.Context, name string) (domain.Role, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *mockRoleRepo) Create(ctx domain.Context, r domain.Role) (domain.Role, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *mockRoleRepo) UpdateKeywords(ctx domain.Context, id string, kws []string) (domain.Role, error) {
	args := m.Called(ctx, id, kws)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *mockRoleRepo) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestRoleService_Create(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRoleService(memory.NewRoleRepo())
	ctx := context.Background()

	role, err := svc.Create(ctx, "  Data Engineer ", []string{" Spark ", "spark", "Airflow", ""})
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", role.Name)
	assert.Equal(t, []string{"Spark", "Airflow"}, role.Keywords)

	_, err = svc.Create(ctx, "Data Engineer", []string{"Kafka"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRoleService_Create_Validation(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRoleService(memory.NewRoleRepo())

	tooMany := make([]string, usecase.MaxKeywords+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("kw%d", i)
	}

	tests := []struct {
		name     string
		role     string
		keywords []string
	}{
		{name: "blank name", role: "  ", keywords: []string{"Go"}},
		{name: "long name", role: strings.Repeat("r", usecase.MaxRoleNameLen+1), keywords: []string{"Go"}},
		{name: "no keywords", role: "Dev", keywords: nil},
		{name: "only blank keywords", role: "Dev", keywords: []string{" ", ""}},
		{name: "long keyword", role: "Dev", keywords: []string{strings.Repeat("k", usecase.MaxKeywordLen+1)}},
		{name: "too many keywords", role: "Dev", keywords: tooMany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.role, tt.keywords)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestRoleService_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRoleService(memory.NewRoleRepo())
	ctx := context.Background()

	role, err := svc.Create(ctx, "QA", []string{"Selenium"})
	require.NoError(t, err)

	updated, err := svc.UpdateKeywords(ctx, role.ID, []string{"Cypress", "Playwright"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cypress", "Playwright"}, updated.Keywords)

	_, err = svc.UpdateKeywords(ctx, role.ID, []string{})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	got, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Keywords, got.Keywords)

	require.NoError(t, svc.Delete(ctx, role.ID))
	require.ErrorIs(t, svc.Delete(ctx, role.ID), domain.ErrNotFound)

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRoleService_KeywordsFor(t *testing.T) {
	t.Parallel()
	repo := memory.NewRoleRepo(
		domain.Role{Name: "Java Developer", Keywords: []string{"Kotlin"}},
		domain.Role{Name: "Placeholder"},
	)
	svc := usecase.NewRoleService(repo)
	ctx := context.Background()

	kws, err := svc.KeywordsFor(ctx, "Java Developer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kotlin"}, kws, "stored role overrides catalog")

	kws, err = svc.KeywordsFor(ctx, "Placeholder")
	require.NoError(t, err)
	assert.Empty(t, kws, "stored role with no keywords stays empty")

	seo, _ := catalog.Lookup("SEO")
	kws, err = svc.KeywordsFor(ctx, "SEO")
	require.NoError(t, err)
	assert.Equal(t, seo, kws)

	kws, err = svc.KeywordsFor(ctx, "Astronaut")
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultKeywords, kws)
}

func TestRoleService_KeywordsFor_StoreError(t *testing.T) {
	t.Parallel()
	repo := &mockRoleRepo{}
	repo.On("GetByName", mock.Anything, "HR").Return(domain.Role{}, assert.AnError).Once()

	_, err := usecase.NewRoleService(repo).KeywordsFor(context.Background(), "HR")
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "op=role.keywords_for")
	repo.AssertExpectations(t)
}
