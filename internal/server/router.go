package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gamescout/backend/internal/catalog"
	"github.com/gamescout/backend/internal/favorites"
	"github.com/gamescout/backend/internal/recommend"
	"github.com/gamescout/backend/internal/trending"
	"github.com/gamescout/backend/internal/upstream"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultPageLimit = 10

var (
	errMissingCatalogClient    = errors.New("catalog client dependency required")
	errMissingTrendingClient   = errors.New("trending client dependency required")
	errMissingRecommender      = errors.New("recommendation generator dependency required")
	errMissingFavoritesService = errors.New("favorites service dependency required")
)

// CatalogClient searches the metadata-rich game catalog.
type CatalogClient interface {
	Search(ctx context.Context, query string) (*catalog.Game, error)
	TopRated(ctx context.Context) ([]catalog.Game, error)
}

// TrendingClient lists the ranking catalog's trending feed.
type TrendingClient interface {
	Trending(ctx context.Context) ([]trending.Game, error)
}

// Recommender generates game suggestions from a seed title.
type Recommender interface {
	Generate(ctx context.Context, seedTitle string) ([]recommend.Suggestion, error)
}

// Dependencies bundles the collaborators of the HTTP surface.
type Dependencies struct {
	Catalog   CatalogClient
	Trending  TrendingClient
	Generator Recommender
	Favorites *favorites.Service
	Logger    *zap.Logger
}

// NewHTTPHandler constructs the API router with validated dependencies.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Catalog == nil {
		return nil, errMissingCatalogClient
	}
	if deps.Trending == nil {
		return nil, errMissingTrendingClient
	}
	if deps.Generator == nil {
		return nil, errMissingRecommender
	}
	if deps.Favorites == nil {
		return nil, errMissingFavoritesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		catalog:   deps.Catalog,
		trending:  deps.Trending,
		generator: deps.Generator,
		favorites: deps.Favorites,
		logger:    logger,
	}

	api := router.Group("/api")
	api.GET("/games/trending", handler.handleTrending)
	api.GET("/games/top", handler.handleTopRated)
	api.POST("/games/search", handler.handleSearch)
	api.POST("/recommendations", handler.handleRecommendations)
	api.GET("/favorites", handler.handleListFavorites)
	api.POST("/favorites", handler.handleLike)
	api.DELETE("/favorites/:igdbID", handler.handleUnlike)

	return router, nil
}

type httpHandler struct {
	catalog   CatalogClient
	trending  TrendingClient
	generator Recommender
	favorites *favorites.Service
	logger    *zap.Logger
}

func (h *httpHandler) handleTrending(c *gin.Context) {
	games, err := h.trending.Trending(c.Request.Context())
	if err != nil {
		h.respondError(c, "trending feed failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *httpHandler) handleTopRated(c *gin.Context) {
	games, err := h.catalog.TopRated(c.Request.Context())
	if err != nil {
		h.respondError(c, "top rated fetch failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

type searchRequestPayload struct {
	Query string `json:"query"`
}

func (h *httpHandler) handleSearch(c *gin.Context) {
	var request searchRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	game, err := h.catalog.Search(c.Request.Context(), request.Query)
	if err != nil {
		h.respondError(c, "catalog search failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}

type recommendRequestPayload struct {
	Game string `json:"game"`
}

func (h *httpHandler) handleRecommendations(c *gin.Context) {
	var request recommendRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Game) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	suggestions, err := h.generator.Generate(c.Request.Context(), request.Game)
	if err != nil {
		h.respondError(c, "recommendation generation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *httpHandler) handleListFavorites(c *gin.Context) {
	limit := defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = parsed
	}

	page, err := h.favorites.ListPage(c.Request.Context(), favorites.PageRequest{
		Limit:    limit,
		Cursor:   c.Query("cursor"),
		Platform: c.Query("platform"),
	})
	if err != nil {
		h.respondError(c, "favorites listing failed", err)
		return
	}

	games := page.Games
	if games == nil {
		games = []favorites.FavoriteGame{}
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "next_cursor": page.NextCursor})
}

type likeRequestPayload struct {
	IGDBID      int64    `json:"igdb_id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url"`
	Rating      float64  `json:"rating"`
	Genres      []string `json:"genres"`
	Platforms   []string `json:"platforms"`
	ReleaseDate string   `json:"release_date"`
}

func (h *httpHandler) handleLike(c *gin.Context) {
	var request likeRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	// Raw platform names are folded into canonical tags here, at the
	// ingestion boundary, so the ledger only ever stores one schema.
	game, err := h.favorites.Like(c.Request.Context(), favorites.GameAttributes{
		IGDBID:      request.IGDBID,
		Name:        request.Name,
		ImageURL:    request.ImageURL,
		Rating:      request.Rating,
		Genres:      request.Genres,
		Platforms:   catalog.MapPlatformTags(request.Platforms),
		ReleaseDate: request.ReleaseDate,
	})
	if err != nil {
		h.respondError(c, "favorite like failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}

func (h *httpHandler) handleUnlike(c *gin.Context) {
	igdbID, err := strconv.ParseInt(c.Param("igdbID"), 10, 64)
	if err != nil || igdbID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_game_id"})
		return
	}

	result, err := h.favorites.Unlike(c.Request.Context(), igdbID)
	if err != nil {
		h.respondError(c, "favorite unlike failed", err)
		return
	}

	if result.Removed {
		c.JSON(http.StatusOK, gin.H{"removed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": false, "game": result.Remaining})
}

// respondError maps adapter and ledger failures onto HTTP statuses. Nothing
// is retried; every error surfaces exactly once.
func (h *httpHandler) respondError(c *gin.Context, message string, err error) {
	var upstreamErr *upstream.Error
	var serviceErr *favorites.ServiceError

	switch {
	case errors.Is(err, catalog.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, favorites.ErrNotFavorited):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_favorited"})
	case errors.Is(err, favorites.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cursor"})
	case errors.Is(err, favorites.ErrInvalidGameID), errors.Is(err, favorites.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	case errors.Is(err, recommend.ErrAPIKeyMissing):
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "api_key_missing", "message": err.Error()})
	case errors.Is(err, recommend.ErrEmptyCompletion):
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation_failed"})
	case errors.As(err, &upstreamErr):
		h.logger.Error(message,
			zap.String("service", upstreamErr.Service),
			zap.Int("status", upstreamErr.StatusCode))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_failed",
			"service": upstreamErr.Service,
			"status":  upstreamErr.StatusCode,
		})
	case errors.As(err, &serviceErr):
		if strings.HasSuffix(serviceErr.Code(), "invalid_limit") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence_failed", "code": serviceErr.Code()})
	default:
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
