package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gamescout/backend/internal/catalog"
	"github.com/gamescout/backend/internal/favorites"
	"github.com/gamescout/backend/internal/recommend"
	"github.com/gamescout/backend/internal/trending"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubCatalog struct {
	game  *catalog.Game
	games []catalog.Game
	err   error
}

func (s *stubCatalog) Search(ctx context.Context, query string) (*catalog.Game, error) {
	return s.game, s.err
}

func (s *stubCatalog) TopRated(ctx context.Context) ([]catalog.Game, error) {
	return s.games, s.err
}

type stubTrending struct {
	games []trending.Game
	err   error
}

func (s *stubTrending) Trending(ctx context.Context) ([]trending.Game, error) {
	return s.games, s.err
}

type stubRecommender struct {
	suggestions []recommend.Suggestion
	err         error
}

func (s *stubRecommender) Generate(ctx context.Context, seedTitle string) ([]recommend.Suggestion, error) {
	return s.suggestions, s.err
}

func newTestFavorites(t *testing.T) (*favorites.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&favorites.FavoriteGame{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := favorites.NewService(favorites.ServiceConfig{
		Database:   db,
		IDProvider: favorites.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct favorites service: %v", err)
	}
	return service, db
}

type handlerStubs struct {
	catalog   CatalogClient
	trending  TrendingClient
	generator Recommender
}

func newTestHandler(t *testing.T, stubs handlerStubs) (http.Handler, *favorites.Service) {
	t.Helper()

	favoritesService, _ := newTestFavorites(t)

	catalogClient := stubs.catalog
	if catalogClient == nil {
		catalogClient = &stubCatalog{}
	}
	trendingClient := stubs.trending
	if trendingClient == nil {
		trendingClient = &stubTrending{}
	}
	generator := stubs.generator
	if generator == nil {
		generator = &stubRecommender{}
	}

	handler, err := NewHTTPHandler(Dependencies{
		Catalog:   catalogClient,
		Trending:  trendingClient,
		Generator: generator,
		Favorites: favoritesService,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler, favoritesService
}
