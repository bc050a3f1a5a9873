package repo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/catalog"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

func presetCatalog(t *testing.T) repo.CatalogRepo {
	t.Helper()
	r, err := repo.ParseCatalogYAML(catalog.Presets)
	require.NoError(t, err)
	return r
}

func TestStaticCatalog_Presets(t *testing.T) {
	r := presetCatalog(t)
	ctx := context.Background()
	all := domain.PaginationParams{Page: 1, Limit: 100}

	dests, total, err := r.ListDestinations(ctx, "", all)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Equal(t, domain.Destination{Slug: "tokyo", Name: "Tokyo"}, dests[0])

	acts, total, err := r.ListActivities(ctx, "", all)
	require.NoError(t, err)
	assert.EqualValues(t, 9, total)
	assert.Equal(t, domain.Activity{Slug: "food-dining", Name: "Food & Dining"}, acts[1])
}

func TestStaticCatalog_PrefixIsCaseInsensitive(t *testing.T) {
	dests, total, err := presetCatalog(t).ListDestinations(context.Background(), "s", domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []domain.Destination{
		{Slug: "seoul", Name: "Seoul"},
		{Slug: "singapore", Name: "Singapore"},
	}, dests)
}

func TestStaticCatalog_Pagination(t *testing.T) {
	r := presetCatalog(t)
	ctx := context.Background()

	page, total, err := r.ListActivities(ctx, "", domain.PaginationParams{Page: 3, Limit: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 9, total)
	require.Len(t, page, 1)
	assert.Equal(t, "adventure", page[0].Slug)

	page, _, err = r.ListActivities(ctx, "", domain.PaginationParams{Page: 4, Limit: 4})
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestStaticCatalog_GetActivity(t *testing.T) {
	r := presetCatalog(t)

	a, err := r.GetActivity(context.Background(), "arts-culture")
	require.NoError(t, err)
	assert.Equal(t, "Arts & Culture", a.Name)

	_, err = r.GetActivity(context.Background(), "skydiving")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseCatalogYAML_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "   ",
		"malformed": "destinations: [Tokyo",
		"blank":     "destinations:\n  - Tokyo\n  - ' '\n",
		"duplicate": "activities:\n  - Shopping\n  - shopping\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := repo.ParseCatalogYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destinations:\n  - Lisbon\nactivities:\n  - Surfing\n"), 0o600))

	r, err := repo.LoadCatalogFile(path)
	require.NoError(t, err)

	dests, total, err := r.ListDestinations(context.Background(), "", domain.NewPaginationParams(nil, nil))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "lisbon", dests[0].Slug)

	_, err = repo.LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
