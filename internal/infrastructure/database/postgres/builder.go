package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

// Dialect constructeur SQL PostgreSQL des listes filtrées. Les requêtes
// sont préparées ($1, $2...) puis exécutées par pgx.
var Dialect = goqu.Dialect("postgres")

// From point de départ d'un SELECT préparé
func From(table ...interface{}) *goqu.SelectDataset {
	return Dialect.From(table...).Prepared(true)
}

// CountOf compte les lignes correspondant aux filtres de ds
func CountOf(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.ClearSelect().ClearOrder().ClearLimit().ClearOffset().
		Select(goqu.COUNT(goqu.Star()))
}

// Page applique limit / offset
func Page(ds *goqu.SelectDataset, limit, offset int) *goqu.SelectDataset {
	return ds.Limit(uint(limit)).Offset(uint(offset))
}

// Search recherche insensible à la casse sur plusieurs colonnes (OR)
func Search(term string, columns ...string) exp.Expression {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	ors := make([]exp.Expression, 0, len(columns))
	for _, col := range columns {
		ors = append(ors, goqu.I(col).ILike(pattern))
	}
	return goqu.Or(ors...)
}

// Count exécute CountOf(ds)
func Count(ctx context.Context, q Querier, ds *goqu.SelectDataset) (int64, error) {
	query, args, err := CountOf(ds).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("construction requête de comptage: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
