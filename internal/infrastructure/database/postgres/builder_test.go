package postgres

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_PreparedPlaceholders(t *testing.T) {
	ds := From(goqu.T("lits").As("l")).
		Select("l.id").
		Where(goqu.I("l.statut").Eq("disponible"), goqu.I("l.chambre_id").Eq("abc"))

	query, args, err := Page(ds.Order(goqu.I("l.numero").Asc()), 20, 40).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, query, `"l"."statut" = $1`)
	assert.Contains(t, query, `"l"."chambre_id" = $2`)
	assert.Contains(t, query, "LIMIT $3")
	assert.Contains(t, query, "OFFSET $4")
	require.Len(t, args, 4)
	assert.Equal(t, "disponible", args[0])
	assert.Equal(t, "abc", args[1])
}

func TestCountOf_DropsOrderAndPaging(t *testing.T) {
	ds := From("patients").Select("id").Where(goqu.I("groupe_sanguin").Eq("O+")).Order(goqu.I("id").Asc()).Limit(10)

	query, _, err := CountOf(ds).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, query, "SELECT COUNT(*)")
	assert.NotContains(t, query, "ORDER BY")
	assert.NotContains(t, query, "LIMIT")
}

func TestSearch_EscapesWildcards(t *testing.T) {
	query, args, err := From("users").Select("id").Where(Search("50%_a", "name", "email")).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, query, `"name" ILIKE $1`)
	assert.Contains(t, query, `"email" ILIKE $2`)
	assert.Contains(t, query, " OR ")
	assert.Equal(t, `%50\%\_a%`, args[0])
}
