package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errInvalidLimit      = errors.New("page limit must be between 1 and 100")
	noOpLogger           = zap.NewNop()

	// ErrNotFavorited reports an Unlike against an identifier with no ledger row.
	ErrNotFavorited = errors.New("favorites: game is not favorited")
	// ErrInvalidCursor reports a pagination cursor that matches no ledger row.
	ErrInvalidCursor = errors.New("favorites: unknown pagination cursor")
)

// ServiceError carries an operation.reason code alongside the storage cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code exposes the machine-readable error code.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "favorites.service.new"
	opLike       = "favorites.like"
	opUnlike     = "favorites.unlike"
	opListPage   = "favorites.list_page"

	maxPageLimit = 100
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// IDProvider issues identifiers for newly created ledger rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig bundles the dependencies of the favorite ledger.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service maintains the persisted favorite ledger.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the ledger service with validated configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Like records one favorite for the game. The first like inserts a row with
// the supplied attributes and counter 1; every subsequent like increments the
// counter without touching the denormalized fields.
func (s *Service) Like(ctx context.Context, attrs GameAttributes) (FavoriteGame, error) {
	if err := attrs.Validate(); err != nil {
		return FavoriteGame{}, newServiceError(opLike, "invalid_attributes", err)
	}

	var result FavoriteGame
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing FavoriteGame
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("igdb_id = ?", attrs.IGDBID).
			Take(&existing).Error

		now := s.clock().UTC().Unix()

		if errors.Is(err, gorm.ErrRecordNotFound) {
			rowID, idErr := s.idProvider.NewID()
			if idErr != nil {
				s.logError(opLike, "id_generation_failed", idErr, zap.Int64("igdb_id", attrs.IGDBID))
				return newServiceError(opLike, "id_generation_failed", idErr)
			}
			created := FavoriteGame{
				ID:               rowID,
				IGDBID:           attrs.IGDBID,
				Name:             attrs.Name,
				ImageURL:         attrs.ImageURL,
				Rating:           attrs.Rating,
				Genres:           StringList(attrs.Genres),
				Platforms:        StringList(attrs.Platforms),
				ReleaseDate:      attrs.ReleaseDate,
				FavoriteCount:    1,
				CreatedAtSeconds: now,
				UpdatedAtSeconds: now,
			}
			if err := tx.Create(&created).Error; err != nil {
				s.logError(opLike, "insert_failed", err, zap.Int64("igdb_id", attrs.IGDBID))
				return newServiceError(opLike, "insert_failed", err)
			}
			result = created
			return nil
		}
		if err != nil {
			s.logError(opLike, "select_failed", err, zap.Int64("igdb_id", attrs.IGDBID))
			return newServiceError(opLike, "select_failed", err)
		}

		// Update path touches the counter only; stored attributes win.
		if err := tx.Model(&FavoriteGame{}).
			Where("igdb_id = ?", attrs.IGDBID).
			UpdateColumns(map[string]any{
				"favorite_count": gorm.Expr("favorite_count + 1"),
				"updated_at_s":   now,
			}).Error; err != nil {
			s.logError(opLike, "increment_failed", err, zap.Int64("igdb_id", attrs.IGDBID))
			return newServiceError(opLike, "increment_failed", err)
		}

		existing.FavoriteCount++
		existing.UpdatedAtSeconds = now
		result = existing
		return nil
	})
	if txErr != nil {
		return FavoriteGame{}, txErr
	}

	return result, nil
}

// UnlikeResult reports the ledger state after an Unlike.
type UnlikeResult struct {
	Removed   bool
	Remaining *FavoriteGame
}

// Unlike removes one favorite for the game. Driving the counter to zero or
// below deletes the row in the same transaction; an identifier with no row
// yields ErrNotFavorited.
func (s *Service) Unlike(ctx context.Context, igdbID int64) (UnlikeResult, error) {
	if igdbID <= 0 {
		return UnlikeResult{}, newServiceError(opUnlike, "invalid_game_id", fmt.Errorf("%w: %d", ErrInvalidGameID, igdbID))
	}

	var result UnlikeResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing FavoriteGame
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("igdb_id = ?", igdbID).
			Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUnlike, "not_favorited", ErrNotFavorited)
		}
		if err != nil {
			s.logError(opUnlike, "select_failed", err, zap.Int64("igdb_id", igdbID))
			return newServiceError(opUnlike, "select_failed", err)
		}

		if existing.FavoriteCount-1 <= 0 {
			if err := tx.Where("igdb_id = ?", igdbID).Delete(&FavoriteGame{}).Error; err != nil {
				s.logError(opUnlike, "delete_failed", err, zap.Int64("igdb_id", igdbID))
				return newServiceError(opUnlike, "delete_failed", err)
			}
			result = UnlikeResult{Removed: true}
			return nil
		}

		now := s.clock().UTC().Unix()
		if err := tx.Model(&FavoriteGame{}).
			Where("igdb_id = ?", igdbID).
			UpdateColumns(map[string]any{
				"favorite_count": gorm.Expr("favorite_count - 1"),
				"updated_at_s":   now,
			}).Error; err != nil {
			s.logError(opUnlike, "decrement_failed", err, zap.Int64("igdb_id", igdbID))
			return newServiceError(opUnlike, "decrement_failed", err)
		}

		existing.FavoriteCount--
		existing.UpdatedAtSeconds = now
		result = UnlikeResult{Remaining: &existing}
		return nil
	})
	if txErr != nil {
		return UnlikeResult{}, txErr
	}

	return result, nil
}

// PageRequest describes a cursor-paginated ledger read.
type PageRequest struct {
	Limit    int
	Cursor   string
	Platform string
}

// Page is one counter-ordered slice of the ledger. NextCursor names the first
// row of the following page; it is empty on the last page.
type Page struct {
	Games      []FavoriteGame
	NextCursor string
}

// ListPage returns up to Limit rows ordered by favorite count descending with
// row id as the tie-break. The query peeks one row past the limit; when the
// extra row exists it is removed from the result and its id becomes the next
// cursor. Cursors are inclusive: a page fetched with a cursor starts at that
// row.
func (s *Service) ListPage(ctx context.Context, request PageRequest) (Page, error) {
	if request.Limit < 1 || request.Limit > maxPageLimit {
		return Page{}, newServiceError(opListPage, "invalid_limit", fmt.Errorf("%w: %d", errInvalidLimit, request.Limit))
	}

	query := s.db.WithContext(ctx).
		Model(&FavoriteGame{}).
		Order("favorite_count DESC, id ASC").
		Limit(request.Limit + 1)

	if request.Platform != "" {
		query = query.Where("platforms LIKE ?", fmt.Sprintf(`%%%q%%`, request.Platform))
	}

	if request.Cursor != "" {
		var anchor FavoriteGame
		err := s.db.WithContext(ctx).
			Where("id = ?", request.Cursor).
			Take(&anchor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Page{}, newServiceError(opListPage, "invalid_cursor", ErrInvalidCursor)
		}
		if err != nil {
			s.logError(opListPage, "cursor_lookup_failed", err, zap.String("cursor", request.Cursor))
			return Page{}, newServiceError(opListPage, "cursor_lookup_failed", err)
		}
		query = query.Where(
			"favorite_count < ? OR (favorite_count = ? AND id >= ?)",
			anchor.FavoriteCount, anchor.FavoriteCount, anchor.ID,
		)
	}

	var rows []FavoriteGame
	if err := query.Find(&rows).Error; err != nil {
		s.logError(opListPage, "query_failed", err)
		return Page{}, newServiceError(opListPage, "query_failed", err)
	}

	page := Page{Games: rows}
	if len(rows) > request.Limit {
		page.NextCursor = rows[request.Limit].ID
		page.Games = rows[:request.Limit]
	}
	return page, nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("favorites service error", attrs...)
}
