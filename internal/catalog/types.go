package catalog

import "strings"

// Game is the normalized shape shared with the presentation layer and the
// favorite ledger ingestion path.
type Game struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Summary      string   `json:"summary"`
	ImageURL     string   `json:"image_url"`
	Genres       []string `json:"genres"`
	Platforms    []string `json:"platforms"`
	PlatformTags []string `json:"platform_tags"`
	GameModes    []string `json:"game_modes"`
	ReleaseDate  string   `json:"release_date"`
	Rating       float64  `json:"rating"`
	RatingCount  int64    `json:"rating_count"`
	Developer    string   `json:"developer"`
	Publisher    string   `json:"publisher"`
	TrailerID    string   `json:"trailer_id"`
}

// metadataGame mirrors the metadata catalog's response document for the
// requested field set.
type metadataGame struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Cover     struct {
		URL string `json:"url"`
	} `json:"cover"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	ReleaseDates []struct {
		Human string `json:"human"`
	} `json:"release_dates"`
	AggregatedRating      float64 `json:"aggregated_rating"`
	AggregatedRatingCount int64   `json:"aggregated_rating_count"`
	GameModes             []struct {
		Name string `json:"name"`
	} `json:"game_modes"`
	InvolvedCompanies []struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Developer bool `json:"developer"`
		Publisher bool `json:"publisher"`
	} `json:"involved_companies"`
	Videos []struct {
		VideoID string `json:"video_id"`
	} `json:"videos"`
}

// Canonical platform tags persisted by the favorite ledger.
const (
	PlatformPC          = "PC"
	PlatformPlayStation = "PLAYSTATION"
	PlatformXbox        = "XBOX"
	PlatformNintendo    = "NINTENDO"
)

// normalize maps a raw metadata catalog record into the internal Game shape.
// The last human-readable release date is treated as canonical and the first
// video as the trailer.
func normalize(raw metadataGame) Game {
	game := Game{
		ID:          raw.ID,
		Name:        raw.Name,
		Summary:     raw.Summary,
		ImageURL:    normalizeImageURL(raw.Cover.URL),
		Rating:      raw.AggregatedRating,
		RatingCount: raw.AggregatedRatingCount,
	}

	for _, genre := range raw.Genres {
		if genre.Name != "" {
			game.Genres = append(game.Genres, genre.Name)
		}
	}
	for _, platform := range raw.Platforms {
		if platform.Name != "" {
			game.Platforms = append(game.Platforms, platform.Name)
		}
	}
	for _, mode := range raw.GameModes {
		if mode.Name != "" {
			game.GameModes = append(game.GameModes, mode.Name)
		}
	}
	game.PlatformTags = MapPlatformTags(game.Platforms)

	if len(raw.ReleaseDates) > 0 {
		game.ReleaseDate = raw.ReleaseDates[len(raw.ReleaseDates)-1].Human
	}
	if len(raw.Videos) > 0 {
		game.TrailerID = raw.Videos[0].VideoID
	}

	for _, involved := range raw.InvolvedCompanies {
		if involved.Developer && game.Developer == "" {
			game.Developer = involved.Company.Name
		}
		if involved.Publisher && game.Publisher == "" {
			game.Publisher = involved.Company.Name
		}
	}

	return game
}

// normalizeImageURL makes the catalog's protocol-relative thumbnail reference
// an absolute URL at cover resolution.
func normalizeImageURL(raw string) string {
	if raw == "" {
		return ""
	}
	url := raw
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return strings.Replace(url, "t_thumb", "t_cover_big", 1)
}

// MapPlatformTags reduces free-form platform names to the canonical tag set
// persisted by the favorite ledger. Names that match no known family are
// dropped; an empty result defaults to PC, matching historical ledger rows.
func MapPlatformTags(names []string) []string {
	seen := make(map[string]struct{})
	var tags []string
	appendTag := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, name := range names {
		lowered := strings.ToLower(name)
		switch {
		case strings.Contains(lowered, "pc") || strings.Contains(lowered, "windows"):
			appendTag(PlatformPC)
		case strings.Contains(lowered, "playstation"):
			appendTag(PlatformPlayStation)
		case strings.Contains(lowered, "xbox"):
			appendTag(PlatformXbox)
		case strings.Contains(lowered, "nintendo") || strings.Contains(lowered, "switch"):
			appendTag(PlatformNintendo)
		}
	}

	if len(tags) == 0 {
		tags = []string{PlatformPC}
	}
	return tags
}
