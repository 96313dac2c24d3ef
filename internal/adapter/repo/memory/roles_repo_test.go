package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

func TestRoleRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoleRepo(domain.Role{Name: "SEO", Keywords: []string{"SEM"}})

	created, err := repo.Create(ctx, domain.Role{Name: "Go Developer", Keywords: []string{"Go", "gRPC"}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, domain.Role{Name: "Go Developer"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Go Developer", list[0].Name)
	assert.Equal(t, "SEO", list[1].Name)

	byName, err := repo.GetByName(ctx, "Go Developer")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	updated, err := repo.UpdateKeywords(ctx, created.ID, []string{"Go", "Docker"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Docker"}, updated.Keywords)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Docker"}, got.Keywords)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrNotFound)
	_, err = repo.UpdateKeywords(ctx, created.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByName(ctx, "go developer")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoleRepo()
	created, err := repo.Create(ctx, domain.Role{Name: "HR", Keywords: []string{"Payroll"}})
	require.NoError(t, err)

	created.Keywords[0] = "mutated"
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Payroll"}, got.Keywords)
}
