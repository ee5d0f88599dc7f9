package favorites

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestLikeCreatesRowWithCounterOne(t *testing.T) {
	service, db := newTestService(t, []string{"row-1"})

	created, err := service.Like(context.Background(), testAttributes(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "row-1" {
		t.Fatalf("expected generated row id, got %q", created.ID)
	}
	if created.FavoriteCount != 1 {
		t.Fatalf("expected counter 1, got %d", created.FavoriteCount)
	}

	var stored FavoriteGame
	if err := db.Where("igdb_id = ?", int64(42)).Take(&stored).Error; err != nil {
		t.Fatalf("failed to load stored row: %v", err)
	}
	if stored.Name != "Game 42" {
		t.Fatalf("unexpected stored name: %q", stored.Name)
	}
	if stored.FavoriteCount != 1 {
		t.Fatalf("expected stored counter 1, got %d", stored.FavoriteCount)
	}
	if len(stored.Platforms) != 2 || stored.Platforms[0] != "PC" {
		t.Fatalf("unexpected stored platforms: %#v", stored.Platforms)
	}

	var count int64
	if err := db.Model(&FavoriteGame{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
}

func TestLikeIncrementDoesNotOverwriteAttributes(t *testing.T) {
	service, db := newTestService(t, []string{"row-1", "row-2"})

	if _, err := service.Like(context.Background(), testAttributes(42)); err != nil {
		t.Fatalf("unexpected error on first like: %v", err)
	}

	changed := testAttributes(42)
	changed.Name = "Renamed Game"
	changed.Rating = 1
	changed.Platforms = []string{"NINTENDO"}

	updated, err := service.Like(context.Background(), changed)
	if err != nil {
		t.Fatalf("unexpected error on second like: %v", err)
	}
	if updated.FavoriteCount != 2 {
		t.Fatalf("expected counter 2, got %d", updated.FavoriteCount)
	}

	var stored FavoriteGame
	if err := db.Where("igdb_id = ?", int64(42)).Take(&stored).Error; err != nil {
		t.Fatalf("failed to load stored row: %v", err)
	}
	if stored.Name != "Game 42" {
		t.Fatalf("update path overwrote name: %q", stored.Name)
	}
	if stored.Rating != 88.5 {
		t.Fatalf("update path overwrote rating: %v", stored.Rating)
	}
	if len(stored.Platforms) != 2 {
		t.Fatalf("update path overwrote platforms: %#v", stored.Platforms)
	}
	if stored.ID != "row-1" {
		t.Fatalf("update path replaced row id: %q", stored.ID)
	}
}

func TestUnlikeThenLikeRestoresPriorState(t *testing.T) {
	service, _ := newTestService(t, []string{"row-1", "row-2"})
	ctx := context.Background()

	if _, err := service.Like(ctx, testAttributes(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Like(ctx, testAttributes(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Unlike(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected unlike error: %v", err)
	}
	if result.Removed {
		t.Fatalf("row should survive at counter 1")
	}
	if result.Remaining == nil || result.Remaining.FavoriteCount != 1 {
		t.Fatalf("expected remaining counter 1, got %#v", result.Remaining)
	}

	restored, err := service.Like(ctx, testAttributes(42))
	if err != nil {
		t.Fatalf("unexpected like error: %v", err)
	}
	if restored.FavoriteCount != 2 {
		t.Fatalf("expected counter restored to 2, got %d", restored.FavoriteCount)
	}
	if restored.Name != "Game 42" {
		t.Fatalf("attributes changed across unlike/like: %q", restored.Name)
	}
}

func TestUnlikeAtCounterOneDeletesRow(t *testing.T) {
	service, db := newTestService(t, []string{"row-1"})
	ctx := context.Background()

	if _, err := service.Like(ctx, testAttributes(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Unlike(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected unlike error: %v", err)
	}
	if !result.Removed {
		t.Fatalf("expected row removal at counter zero")
	}

	var stored FavoriteGame
	err = db.Where("igdb_id = ?", int64(42)).Take(&stored).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected row to be deleted, got %v", err)
	}

	page, err := service.ListPage(ctx, PageRequest{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(page.Games) != 0 {
		t.Fatalf("deleted row still listed: %#v", page.Games)
	}
}

func TestUnlikeAbsentReturnsNotFavorited(t *testing.T) {
	service, db := newTestService(t, nil)

	_, err := service.Unlike(context.Background(), 42)
	if !errors.Is(err, ErrNotFavorited) {
		t.Fatalf("expected ErrNotFavorited, got %v", err)
	}

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %T", err)
	}
	if serviceErr.Code() != "favorites.unlike.not_favorited" {
		t.Fatalf("unexpected error code: %s", serviceErr.Code())
	}

	var count int64
	if err := db.Model(&FavoriteGame{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("unlike on absent wrote %d rows", count)
	}
}

func TestListPagePeeksAheadForNextCursor(t *testing.T) {
	service, db := newTestService(t, nil)
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		row := FavoriteGame{
			ID:            pageRowID(i),
			IGDBID:        int64(i),
			Name:          "Game",
			Genres:        StringList{"Shooter"},
			Platforms:     StringList{"PC"},
			FavoriteCount: int64(12 - i),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to seed row %d: %v", i, err)
		}
	}

	first, err := service.ListPage(ctx, PageRequest{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(first.Games) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(first.Games))
	}
	if first.Games[0].FavoriteCount != 11 {
		t.Fatalf("expected descending counter order, got %d first", first.Games[0].FavoriteCount)
	}
	if first.NextCursor != pageRowID(11) {
		t.Fatalf("expected next cursor %q, got %q", pageRowID(11), first.NextCursor)
	}

	second, err := service.ListPage(ctx, PageRequest{Limit: 10, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(second.Games) != 1 {
		t.Fatalf("expected 1 remaining row, got %d", len(second.Games))
	}
	if second.Games[0].ID != pageRowID(11) {
		t.Fatalf("cursor page should start at the cursor row, got %q", second.Games[0].ID)
	}
	if second.NextCursor != "" {
		t.Fatalf("expected empty next cursor on last page, got %q", second.NextCursor)
	}
}

func TestListPageBreaksCounterTiesByRowID(t *testing.T) {
	service, db := newTestService(t, nil)

	for i := 1; i <= 3; i++ {
		row := FavoriteGame{
			ID:            pageRowID(i),
			IGDBID:        int64(i),
			Name:          "Game",
			Genres:        StringList{},
			Platforms:     StringList{"PC"},
			FavoriteCount: 5,
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to seed row %d: %v", i, err)
		}
	}

	page, err := service.ListPage(context.Background(), PageRequest{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if page.Games[0].ID != pageRowID(1) || page.Games[1].ID != pageRowID(2) {
		t.Fatalf("tie-break order unstable: %q, %q", page.Games[0].ID, page.Games[1].ID)
	}
	if page.NextCursor != pageRowID(3) {
		t.Fatalf("expected cursor at third tied row, got %q", page.NextCursor)
	}
}

func TestListPageFiltersByPlatformTag(t *testing.T) {
	service, db := newTestService(t, nil)

	rows := []FavoriteGame{
		{ID: "row-a", IGDBID: 1, Name: "A", Genres: StringList{}, Platforms: StringList{"PC", "XBOX"}, FavoriteCount: 3},
		{ID: "row-b", IGDBID: 2, Name: "B", Genres: StringList{}, Platforms: StringList{"PLAYSTATION"}, FavoriteCount: 2},
		{ID: "row-c", IGDBID: 3, Name: "C", Genres: StringList{}, Platforms: StringList{"PC"}, FavoriteCount: 1},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed row: %v", err)
		}
	}

	page, err := service.ListPage(context.Background(), PageRequest{Limit: 10, Platform: "PC"})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(page.Games) != 2 {
		t.Fatalf("expected 2 PC rows, got %d", len(page.Games))
	}
	if page.Games[0].ID != "row-a" || page.Games[1].ID != "row-c" {
		t.Fatalf("unexpected filtered rows: %#v", page.Games)
	}
}

func TestListPageRejectsUnknownCursor(t *testing.T) {
	service, _ := newTestService(t, nil)

	_, err := service.ListPage(context.Background(), PageRequest{Limit: 10, Cursor: "missing"})
	if !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestListPageRejectsOutOfRangeLimit(t *testing.T) {
	service, _ := newTestService(t, nil)

	for _, limit := range []int{0, -1, 101} {
		_, err := service.ListPage(context.Background(), PageRequest{Limit: limit})
		var serviceErr *ServiceError
		if !errors.As(err, &serviceErr) || serviceErr.Code() != "favorites.list_page.invalid_limit" {
			t.Fatalf("limit %d: expected invalid_limit error, got %v", limit, err)
		}
	}
}

func TestLikeRejectsInvalidAttributes(t *testing.T) {
	service, _ := newTestService(t, []string{"row-1"})

	_, err := service.Like(context.Background(), GameAttributes{IGDBID: 0, Name: "X"})
	if !errors.Is(err, ErrInvalidGameID) {
		t.Fatalf("expected ErrInvalidGameID, got %v", err)
	}

	_, err = service.Like(context.Background(), GameAttributes{IGDBID: 7, Name: "  "})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func pageRowID(index int) string {
	return "row-" + string(rune('a'+index-1))
}
