package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Count and page queries run concurrently; one connection keeps them
	// on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Show{}, &models.Tag{}, &models.Arrangement{}))
	return db
}

func entity(t *testing.T, name string) *catalog.Entity {
	t.Helper()

	e, ok := catalog.MustNew(nil).Lookup(name)
	require.True(t, ok)
	return e
}

func newShowRepo(t *testing.T, db *gorm.DB) ShowRepository {
	t.Helper()
	return NewShowRepository(db, entity(t, "shows"), 100)
}

func strPtr(s string) *string { return &s }

func showTitles(shows []models.Show) []string {
	titles := make([]string, len(shows))
	for i, s := range shows {
		titles[i] = s.Title
	}
	return titles
}

func TestShowRepo_CreateAndGetByID(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)
	ctx := context.Background()

	show := &models.Show{
		Title:      "Rhapsody in Blue",
		Year:       2019,
		Difficulty: models.DifficultyAdvanced,
		Price:      150,
		Tags:       []models.Tag{{Name: "jazz"}, {Name: "americana"}},
	}
	require.NoError(t, repo.Create(ctx, show))
	assert.False(t, show.ID.IsZero())
	require.Len(t, show.Tags, 2)

	// Existing tags are reused rather than duplicated.
	second := &models.Show{Title: "Blue Moon", Year: 2021, Difficulty: models.DifficultyBeginner, Tags: []models.Tag{{Name: "jazz"}}}
	require.NoError(t, repo.Create(ctx, second))

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(2), tagCount)

	found, err := repo.GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Rhapsody in Blue", found.Title)
	require.Len(t, found.Tags, 2)
	assert.Equal(t, "americana", found.Tags[0].Name)
	assert.Equal(t, "jazz", found.Tags[1].Name)

	missing, err := repo.GetByID(ctx, models.NewULID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestShowRepo_CreateRejectsInvalid(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)

	err := repo.Create(context.Background(), &models.Show{Title: "X", Year: 2020, Difficulty: "Expert"})
	var verr models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "difficulty", verr.Field)
}

func TestShowRepo_List_PaginatesFilteredAndSorted(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)

	var shows []models.Show
	for i := 0; i < 25; i++ {
		shows = append(shows, models.Show{Title: fmt.Sprintf("Advanced %02d", i), Year: 2000 + i, Difficulty: models.DifficultyAdvanced})
	}
	for i := 0; i < 7; i++ {
		shows = append(shows, models.Show{Title: fmt.Sprintf("Beginner %02d", i), Year: 2005 + i, Difficulty: models.DifficultyBeginner})
	}
	require.NoError(t, db.Create(&shows).Error)

	state := filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "difficulty", Operator: filters.OpEquals, Value: "Advanced"}},
		Sort:       []filters.SortCondition{{Field: "year", Direction: filters.SortDesc}},
		Page:       2,
		Limit:      10,
	}

	resp, err := repo.List(context.Background(), state, ShowListOptions{})
	require.NoError(t, err)

	assert.Equal(t, filters.PaginationInfo{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: true}, resp.Pagination)
	require.Len(t, resp.Data, 10)
	for i, show := range resp.Data {
		assert.Equal(t, 2014-i, show.Year)
		assert.Equal(t, models.DifficultyAdvanced, show.Difficulty)
	}
	assert.Equal(t, state.Conditions, resp.AppliedFilters.Conditions)
	assert.Equal(t, state.Sort, resp.AppliedFilters.Sort)
}

func TestShowRepo_List_SearchANDConditions(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)
	ctx := context.Background()

	for _, s := range []models.Show{
		{Title: "Rhapsody in Blue", Year: 2019, Difficulty: models.DifficultyAdvanced},
		{Title: "Blue Moon", Year: 2021, Difficulty: models.DifficultyBeginner},
		{Title: "Summer Nights", Year: 2023, Difficulty: models.DifficultyBeginner, Description: strPtr("A BLUE summer")},
		{Title: "Winter Tale", Year: 2020, Difficulty: models.DifficultyBeginner},
	} {
		require.NoError(t, repo.Create(ctx, &s))
	}

	resp, err := repo.List(ctx, filters.FilterState{
		Search:     "blue",
		Conditions: []filters.FilterCondition{{Field: "difficulty", Operator: filters.OpEquals, Value: "Beginner"}},
		Sort:       []filters.SortCondition{{Field: "title", Direction: filters.SortAsc}},
	}, ShowListOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Blue Moon", "Summer Nights"}, showTitles(resp.Data))
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, 1, resp.AppliedFilters.Page)
	assert.Equal(t, 20, resp.AppliedFilters.Limit)
}

func TestShowRepo_List_DefaultSortAndDates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	shows := []models.Show{
		{Title: "Late May", Year: 2024, Difficulty: models.DifficultyBeginner},
		{Title: "June First", Year: 2024, Difficulty: models.DifficultyBeginner},
		{Title: "June Second", Year: 2024, Difficulty: models.DifficultyBeginner},
	}
	shows[0].CreatedAt = base.Add(-time.Hour)
	shows[1].CreatedAt = base.Add(time.Hour)
	shows[2].CreatedAt = base.Add(25 * time.Hour)
	require.NoError(t, db.Create(&shows).Error)

	resp, err := repo.List(ctx, filters.FilterState{}, ShowListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"June Second", "June First", "Late May"}, showTitles(resp.Data))
	assert.Empty(t, resp.AppliedFilters.Sort)

	resp, err = repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "createdAt", Operator: filters.OpGte, Value: "2024-06-01T00:00:00.000Z"}},
	}, ShowListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"June Second", "June First"}, showTitles(resp.Data))
}

func TestShowRepo_List_FeaturedAndTags(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)
	ctx := context.Background()

	for _, s := range []models.Show{
		{Title: "Alpha", Year: 2019, Difficulty: models.DifficultyAdvanced, Featured: true, Tags: []models.Tag{{Name: "jazz"}}},
		{Title: "Bravo", Year: 2020, Difficulty: models.DifficultyAdvanced, Tags: []models.Tag{{Name: "jazz"}, {Name: "latin"}}},
		{Title: "Charlie", Year: 2021, Difficulty: models.DifficultyAdvanced, Featured: true},
	} {
		require.NoError(t, repo.Create(ctx, &s))
	}

	featured := true
	resp, err := repo.List(ctx, filters.FilterState{
		Sort: []filters.SortCondition{{Field: "title", Direction: filters.SortAsc}},
	}, ShowListOptions{Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Charlie"}, showTitles(resp.Data))

	resp, err = repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "tags", Operator: filters.OpEquals, Value: "jazz"}},
		Sort:       []filters.SortCondition{{Field: "title", Direction: filters.SortAsc}},
	}, ShowListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, showTitles(resp.Data))
	require.Len(t, resp.Data[1].Tags, 2, "tags are preloaded")

	resp, err = repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "tags", Operator: filters.OpIsNull}},
	}, ShowListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie"}, showTitles(resp.Data))
}

func TestShowRepo_List_ClampsLimit(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewShowRepository(db, entity(t, "shows"), 5)

	var shows []models.Show
	for i := 0; i < 8; i++ {
		shows = append(shows, models.Show{Title: fmt.Sprintf("Show %d", i), Year: 2020, Difficulty: models.DifficultyBeginner})
	}
	require.NoError(t, db.Create(&shows).Error)

	resp, err := repo.List(context.Background(), filters.FilterState{Limit: 500}, ShowListOptions{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 5)
	assert.Equal(t, 5, resp.Pagination.Limit)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestShowRepo_List_PageBeyondEnd(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)

	resp, err := repo.List(context.Background(), filters.FilterState{Page: 4}, ShowListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
	assert.Equal(t, int64(0), resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestShowRepo_List_HugePageIsEmpty(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)

	require.NoError(t, db.Create(&[]models.Show{
		{Title: "Alpha", Year: 2020, Difficulty: models.DifficultyBeginner},
		{Title: "Bravo", Year: 2021, Difficulty: models.DifficultyBeginner},
		{Title: "Charlie", Year: 2022, Difficulty: models.DifficultyBeginner},
	}).Error)

	resp, err := repo.List(context.Background(), filters.FilterState{Page: math.MaxInt/20 + 2, Limit: 20}, ShowListOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, math.MaxInt/20, resp.Pagination.Page)
	assert.False(t, resp.Pagination.HasNext)
}

func TestShowRepo_List_InvalidState(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := newShowRepo(t, db)
	ctx := context.Background()

	_, err := repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "composer", Operator: filters.OpEquals, Value: "Ravel"}},
	}, ShowListOptions{})
	assert.ErrorIs(t, err, filters.ErrColumnNotFound)

	_, err = repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "price", Operator: filters.OpBetween, Values: []any{1.0}}},
	}, ShowListOptions{})
	assert.ErrorIs(t, err, filters.ErrInvalidArity)

	_, err = repo.List(ctx, filters.FilterState{
		Conditions: []filters.FilterCondition{{Field: "title", Operator: filters.OpContains}},
	}, ShowListOptions{})
	assert.ErrorIs(t, err, filters.ErrInvalidArity)

	_, err = repo.List(ctx, filters.FilterState{
		Sort: []filters.SortCondition{{Field: "tags", Direction: filters.SortAsc}},
	}, ShowListOptions{})
	assert.ErrorIs(t, err, filters.ErrNotSortable)
}
