package repository

import (
	"context"
	"fmt"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery describes one filtered list request against an entity.
type ListQuery struct {
	Entity *catalog.Entity
	State  filters.FilterState

	// Where holds extra predicates ANDed with the state's search and
	// conditions.
	Where []clause.Expression

	// Preload names associations to load for the returned page.
	Preload []string

	// MaxLimit caps the page size. Zero leaves it uncapped.
	MaxLimit int
}

// List runs q and returns one page of T with pagination info.
//
// The predicate is the AND of the search group (OR across the entity's
// search fields), the state's conditions and q.Where. The page query and the
// count query run concurrently under the same predicate. The entity's default
// sort applies when the state has none, and the primary key breaks ties so
// pages are stable.
func List[T any](ctx context.Context, db *gorm.DB, q ListQuery) (*filters.FilteredResponse[T], error) {
	state := q.State.Normalize(q.MaxLimit)
	table := q.Entity.Table

	search, err := filters.BuildSearchCondition(table, state.Search, q.Entity.SearchFields)
	if err != nil {
		return nil, err
	}
	where, err := filters.BuildWhereClause(table, state.Conditions)
	if err != nil {
		return nil, err
	}

	sorts := state.Sort
	if len(sorts) == 0 {
		sorts = q.Entity.DefaultSort
	}
	order, err := filters.BuildOrderByClause(table, sorts)
	if err != nil {
		return nil, err
	}
	order = append(order, clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}})

	predicate := filters.And(append([]clause.Expression{search, where}, q.Where...)...)
	scoped := func(ctx context.Context) *gorm.DB {
		tx := db.WithContext(ctx).Model(new(T))
		if predicate != nil {
			tx = tx.Where(predicate)
		}
		return tx
	}

	var total int64
	rows := []T{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := scoped(gctx).Count(&total).Error; err != nil {
			return fmt.Errorf("counting %s: %w", q.Entity.Name, err)
		}
		return nil
	})
	g.Go(func() error {
		tx := scoped(gctx).
			Order(clause.OrderBy{Columns: order}).
			Offset(state.Offset()).
			Limit(state.EffectiveLimit())
		for _, assoc := range q.Preload {
			tx = tx.Preload(assoc)
		}
		if err := tx.Find(&rows).Error; err != nil {
			return fmt.Errorf("listing %s: %w", q.Entity.Name, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := filters.BuildFilteredResponse(rows, total, state)
	return &resp, nil
}
