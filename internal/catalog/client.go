package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gamescout/backend/internal/upstream"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.igdb.com/v4"
	serviceName    = "igdb"

	searchFields = "name,cover.url,genres.name,platforms.name,summary," +
		"release_dates.human,aggregated_rating,aggregated_rating_count," +
		"game_modes.name,involved_companies.company.name," +
		"involved_companies.developer,involved_companies.publisher,videos.video_id"
)

var (
	errMissingClientID    = errors.New("client id configuration required")
	errMissingAccessToken = errors.New("access token configuration required")
	errEmptyQuery         = errors.New("catalog: query must not be empty")

	// ErrNoMatch reports that the catalog returned zero results for a search.
	ErrNoMatch = errors.New("catalog: no matching game")

	// ErrInvalidClientConfig wraps constructor validation failures.
	ErrInvalidClientConfig = errors.New("catalog: invalid client config")
)

// Config bundles configuration required to instantiate a Client.
type Config struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client queries the metadata-rich game catalog.
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient constructs a catalog client with validated configuration.
func NewClient(cfg Config) (*Client, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingClientID)
	}
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingAccessToken)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     baseURL,
		clientID:    clientID,
		accessToken: accessToken,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// Search returns the single best-ranked match for the free-text query,
// normalized into the internal Game shape. A catalog response with zero
// results yields ErrNoMatch rather than an empty record.
func (c *Client) Search(ctx context.Context, query string) (*Game, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, errEmptyQuery
	}

	body := fmt.Sprintf(
		"search %q; fields %s; where rating > 75; sort aggregated_rating desc; limit 1;",
		trimmed, searchFields,
	)

	games, err := c.queryGames(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNoMatch
	}

	game := normalize(games[0])
	c.logger.Debug("catalog search resolved",
		zap.String("query", trimmed),
		zap.Int64("game_id", game.ID))
	return &game, nil
}

// TopRated returns the catalog's ten highest-rated games with a meaningful
// rating sample.
func (c *Client) TopRated(ctx context.Context) ([]Game, error) {
	body := fmt.Sprintf(
		"fields %s; where aggregated_rating_count > 10; sort total_rating desc; limit 10;",
		searchFields,
	)

	raw, err := c.queryGames(ctx, body)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(raw))
	for _, record := range raw {
		games = append(games, normalize(record))
	}
	return games, nil
}

func (c *Client) queryGames(ctx context.Context, body string) ([]metadataGame, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	request.Header.Set("Client-ID", c.clientID)
	request.Header.Set("Authorization", "Bearer "+c.accessToken)
	request.Header.Set("Content-Type", "text/plain")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("catalog: request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, upstream.NewError(serviceName, response.StatusCode, response.Status)
	}

	var games []metadataGame
	if err := json.NewDecoder(response.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("catalog: decode response: %w", err)
	}
	return games, nil
}
