package favorites

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidGameID indicates an external game identifier that is not positive.
	ErrInvalidGameID = errors.New("favorites: invalid game id")
	// ErrInvalidName indicates an empty or oversized game name.
	ErrInvalidName = errors.New("favorites: invalid game name")
)

// StringList stores a set of names as a JSON text column.
type StringList []string

// Value serializes the list for storage.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan deserializes the stored JSON list.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch data := value.(type) {
	case string:
		if data == "" {
			*l = StringList{}
			return nil
		}
		return json.Unmarshal([]byte(data), l)
	case []byte:
		if len(data) == 0 {
			*l = StringList{}
			return nil
		}
		return json.Unmarshal(data, l)
	default:
		return fmt.Errorf("favorites: cannot scan %T into StringList", value)
	}
}

// FavoriteGame is one row of the favorite ledger: a deduplicated, denormalized
// game record with a monotonically adjusted favorite counter. A row whose
// counter reaches zero is deleted, never stored non-positive.
type FavoriteGame struct {
	ID               string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	IGDBID           int64      `gorm:"column:igdb_id;uniqueIndex:idx_favorite_games_igdb;not null" json:"igdb_id"`
	Name             string     `gorm:"column:name;size:320;not null" json:"name"`
	ImageURL         string     `gorm:"column:image_url;size:512;not null;default:''" json:"image_url"`
	Rating           float64    `gorm:"column:rating;not null;default:0" json:"rating"`
	Genres           StringList `gorm:"column:genres;type:text;not null" json:"genres"`
	Platforms        StringList `gorm:"column:platforms;type:text;not null" json:"platforms"`
	ReleaseDate      string     `gorm:"column:release_date;size:190;not null;default:''" json:"release_date"`
	FavoriteCount    int64      `gorm:"column:favorite_count;not null;index:idx_favorite_games_count" json:"favorite_count"`
	CreatedAtSeconds int64      `gorm:"column:created_at_s;not null" json:"created_at_s"`
	UpdatedAtSeconds int64      `gorm:"column:updated_at_s;not null" json:"updated_at_s"`
}

// TableName provides the explicit table binding for GORM.
func (FavoriteGame) TableName() string {
	return "favorite_games"
}

// GameAttributes is the denormalized payload supplied with a Like. Attributes
// are written only on the insert branch; subsequent likes touch the counter
// alone.
type GameAttributes struct {
	IGDBID      int64
	Name        string
	ImageURL    string
	Rating      float64
	Genres      []string
	Platforms   []string
	ReleaseDate string
}

// Validate checks the attributes before they reach the ledger.
func (a GameAttributes) Validate() error {
	if a.IGDBID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGameID, a.IGDBID)
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidName, maxIdentifierLength)
	}
	return nil
}
