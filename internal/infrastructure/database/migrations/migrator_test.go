package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SortsByVersionAndSkipsOtherFiles(t *testing.T) {
	source := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
		"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"sql/README.md":       {Data: []byte("notes")},
	}

	migrations, err := Load(source)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_first", migrations[0].Version)
	assert.Equal(t, "0002_second", migrations[1].Version)
	assert.Equal(t, "SELECT 2;", migrations[1].SQL)
}

func TestEmbeddedSchema_DeclaresConcurrencyGuards(t *testing.T) {
	migrations, err := Load(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	schema := migrations[0].SQL
	assert.Contains(t, schema, "rendezvous_creneau_actif_key")
	assert.Contains(t, schema, "lits_patient_actif_key")
	assert.Contains(t, schema, "lits_occupation_check")
}
