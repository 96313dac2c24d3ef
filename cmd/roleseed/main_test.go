package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

type recordingUpserter struct {
	names  []string
	failOn string
}

func (r *recordingUpserter) Upsert(_ domain.Context, name string, keywords []string) (domain.Role, error) {
	if name == r.failOn {
		return domain.Role{}, assert.AnError
	}
	r.names = append(r.names, name)
	return domain.Role{Name: name, Keywords: keywords}, nil
}

func TestLoadRoles_Builtin(t *testing.T) {
	roles, err := loadRoles("")
	require.NoError(t, err)
	assert.Len(t, roles, len(catalog.Roles()))
}

func TestLoadRoles_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - name: Data Engineer\n    keywords: [Spark, Airflow, spark]\n"), 0o600))

	roles, err := loadRoles(path)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Data Engineer", roles[0].Name)
	assert.Equal(t, []string{"Spark", "Airflow"}, roles[0].Keywords)
}

func TestLoadRoles_Errors(t *testing.T) {
	_, err := loadRoles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("roles: []\n"), 0o600))
	_, err = loadRoles(empty)
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	roles := []domain.Role{{Name: "A", Keywords: []string{"x"}}, {Name: "B"}, {Name: "C"}}

	rec := &recordingUpserter{}
	n, err := seed(context.Background(), rec, roles)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"A", "B", "C"}, rec.names)

	rec = &recordingUpserter{failOn: "B"}
	n, err = seed(context.Background(), rec, roles)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, n)
}

func TestRun_RequiresDB(t *testing.T) {
	err := run(config.Config{}, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
}
