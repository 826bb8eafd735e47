package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

func TestCreateScript_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	err := CreateScript(context.Background(), db, &domain.Script{ID: "s1"})
	if err == nil {
		t.Fatalf("expected error creating without table")
	}
}

func TestGetScript_FoundAndNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Script{})
	now := time.Now().UTC().Truncate(time.Second)
	seedScript(t, db, "s1", "u1", now)

	got, err := GetScript(context.Background(), db, "s1")
	if err != nil || got.ID != "s1" || got.UserID != "u1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("GetScript = %+v, %v", got, err)
	}

	_, err = GetScript(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListScriptsPage_OrderAndWindow(t *testing.T) {
	db := newTestDB(t, &domain.Script{})
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		seedScript(t, db, id, "u1", base.Add(time.Duration(i)*time.Minute))
	}
	seedScript(t, db, "z", "u2", base.Add(time.Hour))

	page, err := ListScriptsPage(context.Background(), db, "u1", 1, 2)
	if err != nil {
		t.Fatalf("ListScriptsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected page: %+v", page)
	}

	n, err := CountScripts(context.Background(), db, "u1")
	if err != nil || n != 4 {
		t.Fatalf("CountScripts = %d, %v", n, err)
	}

	recent, err := RecentScripts(context.Background(), db, 2)
	if err != nil || len(recent) != 2 || recent[0].ID != "z" || recent[1].ID != "d" {
		t.Fatalf("RecentScripts = %+v, %v", recent, err)
	}
}

func TestVideoRepo_CreateGetList(t *testing.T) {
	db := newTestDB(t, &domain.Video{})
	now := time.Now().UTC()
	v := &domain.Video{
		ID: "v1", ScriptID: "s1", UserID: "u1", Style: domain.StyleCasual, Voice: "casual_female", VoiceID: "vid",
		Segments: []domain.Segment{{SegmentID: 1, Text: "one", Colors: []string{"#f59e0b"}, Animation: "pulse"}},
		Status:   "completed", CreatedAt: now,
	}
	if err := CreateVideo(context.Background(), db, v); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	got, err := GetVideo(context.Background(), db, "v1")
	if err != nil || got.ScriptID != "s1" || len(got.Segments) != 1 || got.Segments[0].Animation != "pulse" {
		t.Fatalf("GetVideo = %+v, %v", got, err)
	}
	if _, err := GetVideo(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := ListVideosPage(context.Background(), db, "u1", 0, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListVideosPage = %+v, %v", list, err)
	}
}
