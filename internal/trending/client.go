package trending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gamescout/backend/internal/upstream"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://api.rawg.io/api"
	defaultPageSize = 20
	serviceName     = "rawg"
)

var (
	errMissingAPIKey = errors.New("api key configuration required")

	// ErrInvalidClientConfig wraps constructor validation failures.
	ErrInvalidClientConfig = errors.New("trending: invalid client config")
)

// Game is one entry of the ranking catalog's trending feed. Entries are
// returned verbatim; filtering out games without a background image is a
// presentation concern.
type Game struct {
	ID              int64    `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Released        string   `json:"released"`
	BackgroundImage string   `json:"background_image"`
	Rating          float64  `json:"rating"`
	Genres          []string `json:"genres"`
	Platforms       []string `json:"platforms"`
	Stores          []string `json:"stores"`
}

type feedPage struct {
	Count    int64  `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []struct {
		ID              int64   `json:"id"`
		Slug            string  `json:"slug"`
		Name            string  `json:"name"`
		Released        string  `json:"released"`
		BackgroundImage string  `json:"background_image"`
		Rating          float64 `json:"rating"`
		Genres          []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Platforms []struct {
			Platform struct {
				Name string `json:"name"`
			} `json:"platform"`
		} `json:"platforms"`
		Stores []struct {
			Store struct {
				Name string `json:"name"`
			} `json:"store"`
		} `json:"stores"`
	} `json:"results"`
}

// Config bundles configuration required to instantiate a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	HTTPClient *http.Client
	Logger     *zap.Logger
	Clock      func() time.Time
}

// Client queries the popularity-ranking game catalog.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
	clock      func() time.Time
}

// NewClient constructs a trending feed client with validated configuration.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingAPIKey)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		pageSize:   pageSize,
		httpClient: httpClient,
		logger:     logger,
		clock:      clock,
	}, nil
}

// Trending returns the highest-rated games released in the current calendar
// year, ordered by rating descending.
func (c *Client) Trending(ctx context.Context) ([]Game, error) {
	year := c.clock().Year()

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("dates", fmt.Sprintf("%d-01-01,%d-12-31", year, year))
	query.Set("ordering", "-rating")
	query.Set("page_size", fmt.Sprintf("%d", c.pageSize))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/games?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trending: build request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("trending: request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, upstream.NewError(serviceName, response.StatusCode, response.Status)
	}

	var page feedPage
	if err := json.NewDecoder(response.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("trending: decode response: %w", err)
	}

	games := make([]Game, 0, len(page.Results))
	for _, result := range page.Results {
		game := Game{
			ID:              result.ID,
			Slug:            result.Slug,
			Name:            result.Name,
			Released:        result.Released,
			BackgroundImage: result.BackgroundImage,
			Rating:          result.Rating,
		}
		for _, genre := range result.Genres {
			if genre.Name != "" {
				game.Genres = append(game.Genres, genre.Name)
			}
		}
		for _, association := range result.Platforms {
			if association.Platform.Name != "" {
				game.Platforms = append(game.Platforms, association.Platform.Name)
			}
		}
		for _, association := range result.Stores {
			if association.Store.Name != "" {
				game.Stores = append(game.Stores, association.Store.Name)
			}
		}
		games = append(games, game)
	}

	c.logger.Debug("trending feed fetched",
		zap.Int("year", year),
		zap.Int("count", len(games)))
	return games, nil
}
