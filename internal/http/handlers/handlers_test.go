package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/glebarez/sqlite"
	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/config"
	internalhttp "github.com/jmylchreest/showbook/internal/http"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
	"github.com/jmylchreest/showbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	api    humatest.TestAPI
	shows  map[string]*models.Show
	bolero *models.Arrangement
}

func strPtr(s string) *string { return &s }

func setupTestAPI(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Show{}, &models.Tag{}, &models.Arrangement{}))

	cat := catalog.MustNew(nil)
	showEntity, _ := cat.Lookup(string(catalog.Shows))
	arrangementEntity, _ := cat.Lookup(string(catalog.Arrangements))
	showRepo := repository.NewShowRepository(db, showEntity, 50)
	arrangementRepo := repository.NewArrangementRepository(db, arrangementEntity, 50)

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{shows: make(map[string]*models.Show)}
	for i, s := range []models.Show{
		{Title: "Alpha", Year: 2020, Difficulty: models.DifficultyBeginner, Featured: true, Price: 100, Tags: []models.Tag{{Name: "jazz"}}},
		{Title: "Bravo", Year: 2022, Difficulty: models.DifficultyAdvanced, Price: 300, Tags: []models.Tag{{Name: "rock"}}},
		{Title: "Charlie", Year: 2024, Difficulty: models.DifficultyIntermediate, Price: 200},
	} {
		s.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, showRepo.Create(ctx, &s))
		f.shows[s.Title] = &s
	}

	f.bolero = &models.Arrangement{Title: "Bolero", Type: strPtr("Full Orchestral"), Price: 250, ShowID: &f.shows["Bravo"].ID}
	require.NoError(t, arrangementRepo.Create(ctx, f.bolero))
	require.NoError(t, arrangementRepo.Create(ctx, &models.Arrangement{Title: "Sousa Medley", Type: strPtr("Marching Band"), Price: 90}))

	server := internalhttp.NewServer(config.ServerConfig{Host: "localhost", Port: 8080}, nil, "test")
	server.Register(
		NewShowHandler(showRepo, cat, 20),
		NewArrangementHandler(arrangementRepo, cat, 20),
		NewCatalogHandler(cat, "http://localhost:8080/"),
		NewHealthHandler(nil),
	)

	f.api = humatest.Wrap(t, server.API())
	return f
}

func listPath(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func titles(rows []ShowResponse) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestShowHandler_List(t *testing.T) {
	f := setupTestAPI(t)

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{
			name: "default sort is newest first",
			want: []string{"Charlie", "Bravo", "Alpha"},
		},
		{
			name: "filter and sort",
			params: url.Values{
				"filters": {`[{"field":"year","operator":"gte","value":2022}]`},
				"sort":    {`[{"field":"year","direction":"asc"}]`},
			},
			want: []string{"Bravo", "Charlie"},
		},
		{
			name:   "search",
			params: url.Values{"search": {"brav"}},
			want:   []string{"Bravo"},
		},
		{
			name:   "tag relation",
			params: url.Values{"filters": {`[{"field":"tags","operator":"equals","value":"jazz"}]`}},
			want:   []string{"Alpha"},
		},
		{
			name:   "preset",
			params: url.Values{"preset": {"beginner-friendly"}},
			want:   []string{"Alpha"},
		},
		{
			name:   "featured only",
			params: url.Values{"featured": {"true"}},
			want:   []string{"Alpha"},
		},
		{
			name:   "not featured",
			params: url.Values{"featured": {"false"}, "sort": {`[{"field":"title","direction":"asc"}]`}},
			want:   []string{"Bravo", "Charlie"},
		},
		{
			name:   "malformed filters are ignored",
			params: url.Values{"filters": {`[{"field":`}},
			want:   []string{"Charlie", "Bravo", "Alpha"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.api.Get(listPath("/api/v1/shows", tt.params))
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			body := decode[ListResponse[ShowResponse]](t, resp.Body.Bytes())
			assert.Equal(t, tt.want, titles(body.Data))
			assert.Equal(t, int64(len(tt.want)), body.Pagination.Total)
		})
	}
}

func TestShowHandler_ListPagination(t *testing.T) {
	f := setupTestAPI(t)

	resp := f.api.Get(listPath("/api/v1/shows", url.Values{"page": {"2"}, "limit": {"1"}}))
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[ListResponse[ShowResponse]](t, resp.Body.Bytes())
	assert.Equal(t, []string{"Bravo"}, titles(body.Data))
	assert.Equal(t, filters.PaginationInfo{Page: 2, Limit: 1, Total: 3, TotalPages: 3, HasNext: true, HasPrev: true}, body.Pagination)
	assert.Equal(t, 2, body.AppliedFilters.Page)
	assert.Equal(t, 1, body.AppliedFilters.Limit)
}

func TestShowHandler_ListDefaultsAndClamps(t *testing.T) {
	f := setupTestAPI(t)

	resp := f.api.Get("/api/v1/shows")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 20, decode[ListResponse[ShowResponse]](t, resp.Body.Bytes()).Pagination.Limit)

	resp = f.api.Get(listPath("/api/v1/shows", url.Values{"limit": {"500"}}))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 50, decode[ListResponse[ShowResponse]](t, resp.Body.Bytes()).Pagination.Limit)

	resp = f.api.Get(listPath("/api/v1/shows", url.Values{"limit": {"abc"}, "page": {"-3"}}))
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[ListResponse[ShowResponse]](t, resp.Body.Bytes())
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 20, body.Pagination.Limit)
}

func TestShowHandler_ListRejectsInvalidQueries(t *testing.T) {
	f := setupTestAPI(t)

	tests := []struct {
		name     string
		params   url.Values
		contains string
	}{
		{
			name:     "unknown field",
			params:   url.Values{"filters": {`[{"field":"composer","operator":"equals","value":"Ravel"}]`}},
			contains: "composer",
		},
		{
			name:     "operator not allowed",
			params:   url.Values{"filters": {`[{"field":"year","operator":"contains","value":"20"}]`}},
			contains: "year",
		},
		{
			name:     "enum literal",
			params:   url.Values{"filters": {`[{"field":"difficulty","operator":"equals","value":"Expert"}]`}},
			contains: "Expert",
		},
		{
			name:     "unsortable relation",
			params:   url.Values{"sort": {`[{"field":"tags","direction":"asc"}]`}},
			contains: "tags",
		},
		{
			name:     "unknown preset",
			params:   url.Values{"preset": {"nope"}},
			contains: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.api.Get(listPath("/api/v1/shows", tt.params))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.contains)
		})
	}

	// Parameter schema violations are rejected by the framework itself.
	resp := f.api.Get(listPath("/api/v1/shows", url.Values{"featured": {"maybe"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "featured")
}

func TestShowHandler_Get(t *testing.T) {
	f := setupTestAPI(t)

	bravo := f.shows["Bravo"]
	resp := f.api.Get("/api/v1/shows/" + bravo.ID.String())
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[ShowResponse](t, resp.Body.Bytes())
	assert.Equal(t, bravo.ID, body.ID)
	assert.Equal(t, []string{"rock"}, body.Tags)
	require.Len(t, body.Arrangements, 1)
	assert.Equal(t, "Bolero", body.Arrangements[0].Title)

	assert.Equal(t, http.StatusBadRequest, f.api.Get("/api/v1/shows/not-a-ulid").Code)
	assert.Equal(t, http.StatusNotFound, f.api.Get("/api/v1/shows/"+models.NewULID().String()).Code)
}

func TestArrangementHandler(t *testing.T) {
	f := setupTestAPI(t)

	resp := f.api.Get("/api/v1/arrangements")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListResponse[ArrangementResponse]](t, resp.Body.Bytes())
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Bolero", list.Data[0].Title)
	require.NotNil(t, list.Data[0].Show)
	assert.Equal(t, "Bravo", list.Data[0].Show.Title)
	assert.Nil(t, list.Data[1].Show)

	resp = f.api.Get(listPath("/api/v1/arrangements", url.Values{"preset": {"affordable-arrangements"}}))
	require.Equal(t, http.StatusOK, resp.Code)
	list = decode[ListResponse[ArrangementResponse]](t, resp.Body.Bytes())
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Sousa Medley", list.Data[0].Title)

	resp = f.api.Get("/api/v1/arrangements/" + f.bolero.ID.String())
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[ArrangementResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Bolero", got.Title)
	require.NotNil(t, got.Show)
	assert.Equal(t, f.shows["Bravo"].ID, got.Show.ID)

	assert.Equal(t, http.StatusNotFound, f.api.Get("/api/v1/arrangements/"+models.NewULID().String()).Code)
	assert.Equal(t, http.StatusBadRequest, f.api.Get(listPath("/api/v1/arrangements", url.Values{"preset": {"featured"}})).Code)
}

func TestCatalogHandler(t *testing.T) {
	f := setupTestAPI(t)

	resp := f.api.Get("/api/v1/catalog")
	require.Equal(t, http.StatusOK, resp.Code)
	entities := decode[struct{ Entities []EntitySummary }](t, resp.Body.Bytes()).Entities
	require.Len(t, entities, 2)
	assert.Equal(t, "arrangements", entities[0].Name)
	assert.Equal(t, "/api/v1/shows", entities[1].ListPath)

	resp = f.api.Get("/api/v1/catalog/shows/fields")
	require.Equal(t, http.StatusOK, resp.Code)
	fields := decode[struct{ Fields []filters.FilterField }](t, resp.Body.Bytes()).Fields
	keys := make([]string, len(fields))
	for i, field := range fields {
		keys[i] = field.Key
	}
	assert.Contains(t, keys, "difficulty")
	assert.NotContains(t, keys, "id")
	assert.NotContains(t, keys, "createdAt")

	resp = f.api.Get("/api/v1/catalog/arrangements/presets")
	require.Equal(t, http.StatusOK, resp.Code)
	presets := decode[struct{ Presets []catalog.PresetLink }](t, resp.Body.Bytes()).Presets
	require.Len(t, presets, 4)
	assert.Equal(t, "orchestral", presets[0].ID)

	link, err := url.Parse(presets[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/arrangements", link.Path)
	assert.Equal(t, "localhost:8080", link.Host)
	assert.Contains(t, link.Query().Get("filters"), "orchestral")

	// The deep link reproduces the preset's view.
	resp = f.api.Get(link.RequestURI())
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListResponse[ArrangementResponse]](t, resp.Body.Bytes())
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Bolero", list.Data[0].Title)

	assert.Equal(t, http.StatusNotFound, f.api.Get("/api/v1/catalog/venues/fields").Code)
	assert.Equal(t, http.StatusNotFound, f.api.Get("/api/v1/catalog/venues/presets").Code)
}

func TestCatalogHandler_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := NewCatalogHandler(catalog.MustNew(nil), "").WithLogger(log)

	_, err := h.GetPresets(context.Background(), &EntityInput{Entity: "venues"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "unknown catalog entity requested")
	assert.Contains(t, buf.String(), `"entity":"venues"`)

	out, err := h.GetPresets(context.Background(), &EntityInput{Entity: "shows"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Body.Presets)
	assert.True(t, strings.HasPrefix(out.Body.Presets[0].URL, "/api/v1/shows"))
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	f := setupTestAPI(t)

	resp := f.api.Get("/livez")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)

	resp = f.api.Get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "not_configured")

	ready, err := NewHealthHandler(fakePinger{}).GetReadyz(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ready.Status)
	assert.Equal(t, "ready", ready.Body.Status)

	down, err := NewHealthHandler(fakePinger{err: errors.New("connection refused")}).GetReadyz(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, down.Status)
	assert.Equal(t, "connection refused", down.Body.Components["database"])
}
