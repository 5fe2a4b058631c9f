package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"resona/apperr"
	"resona/core/upload"
	"resona/model"
)

func newTrackFixture() (*memStore, *fakeBlobStore, *TrackService) {
	m := newMemStore()
	blobs := newFakeBlobStore()
	svc := NewTrackService(
		&fakeTrackRepo{m: m},
		&fakeCommentRepo{m: m},
		&fakeLikeRepo{m: m},
		&fakePlaylistRepo{m: m},
		upload.NewCoordinator(blobs, 10<<20),
	)
	return m, blobs, svc
}

func audioFile(name, content string) upload.Upload {
	return upload.Upload{Filename: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func TestTrackCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores blob and record", func(t *testing.T) {
		m, blobs, svc := newTrackFixture()

		track, err := svc.Create(ctx, 1, CreateTrackInput{
			Title: "First Light",
			Genre: "ambient",
			Audio: audioFile("first.mp3", "audio-bytes"),
		})
		if err != nil {
			t.Fatalf("Create = %v", err)
		}
		if track.ID == 0 {
			t.Error("created track has no id")
		}
		if track.LikeCount != 0 {
			t.Errorf("fresh track like count = %d, want 0", track.LikeCount)
		}
		stored := m.tracks[track.ID]
		if stored == nil {
			t.Fatal("track not persisted")
		}
		if _, ok := blobs.objects[stored.AudioURL]; !ok {
			t.Errorf("audio url %q does not resolve to a blob", stored.AudioURL)
		}
	})

	t.Run("does not re-read the committed row", func(t *testing.T) {
		m := newMemStore()
		blobs := newFakeBlobStore()
		repo := &fakeTrackRepo{m: m, getErr: fmt.Errorf("replica lagging")}
		svc := NewTrackService(repo, &fakeCommentRepo{m: m}, &fakeLikeRepo{m: m}, &fakePlaylistRepo{m: m}, upload.NewCoordinator(blobs, 10<<20))

		track, err := svc.Create(ctx, 1, CreateTrackInput{
			Title: "Committed",
			Audio: audioFile("done.mp3", "audio-bytes"),
		})
		if err != nil {
			t.Fatalf("Create after commit = %v", err)
		}
		if track.ID == 0 || track.CreatedAt.IsZero() {
			t.Errorf("created track missing id or timestamp: %+v", track.Track)
		}
	})

	t.Run("requires title and audio", func(t *testing.T) {
		_, _, svc := newTrackFixture()

		_, err := svc.Create(ctx, 1, CreateTrackInput{Audio: audioFile("a.mp3", "x")})
		if !apperr.IsValidation(err) {
			t.Errorf("Create without title = %v, want validation error", err)
		}

		_, err = svc.Create(ctx, 1, CreateTrackInput{Title: "No Audio"})
		if !apperr.IsValidation(err) {
			t.Errorf("Create without audio = %v, want validation error", err)
		}
	})

	t.Run("rejects bad extension before storing", func(t *testing.T) {
		_, blobs, svc := newTrackFixture()

		_, err := svc.Create(ctx, 1, CreateTrackInput{
			Title: "Nope",
			Audio: audioFile("notes.txt", "x"),
		})
		if !apperr.IsValidation(err) {
			t.Fatalf("Create = %v, want validation error", err)
		}
		if len(blobs.objects) != 0 {
			t.Errorf("blob store holds %d objects, want 0", len(blobs.objects))
		}
	})
}

func TestTrackGet(t *testing.T) {
	ctx := context.Background()
	m, _, svc := newTrackFixture()
	track := m.addTrack(1, "Echoes")
	m.likes[[2]int64{7, track.ID}] = track.CreatedAt
	m.likes[[2]int64{8, track.ID}] = track.CreatedAt

	t.Run("computes like count", func(t *testing.T) {
		got, err := svc.Get(ctx, track.ID)
		if err != nil {
			t.Fatalf("Get = %v", err)
		}
		if got.LikeCount != 2 {
			t.Errorf("like count = %d, want 2", got.LikeCount)
		}
	})

	t.Run("missing track is 404", func(t *testing.T) {
		_, err := svc.Get(ctx, 999)
		if !apperr.IsNotFound(err) {
			t.Errorf("Get = %v, want not found", err)
		}
	})
}

func TestTrackUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("patches only supplied fields", func(t *testing.T) {
		m, _, svc := newTrackFixture()
		track := m.addTrack(1, "Old Title")
		track.Genre = "ambient"
		oldURL := track.AudioURL

		title := "New Title"
		got, err := svc.Update(ctx, track.ID, 1, TrackPatch{Title: &title})
		if err != nil {
			t.Fatalf("Update = %v", err)
		}
		if got.Title != "New Title" || got.Genre != "ambient" {
			t.Errorf("got title=%q genre=%q, want patched title only", got.Title, got.Genre)
		}
		if got.AudioURL != oldURL {
			t.Errorf("audio url changed on a metadata-only patch")
		}
	})

	t.Run("replaces audio and releases old blob", func(t *testing.T) {
		m, blobs, svc := newTrackFixture()

		created, err := svc.Create(ctx, 1, CreateTrackInput{
			Title: "Replace Me",
			Audio: audioFile("v1.mp3", "one"),
		})
		if err != nil {
			t.Fatalf("Create = %v", err)
		}
		oldURL := created.AudioURL

		audio := audioFile("v2.mp3", "two")
		got, err := svc.Update(ctx, created.ID, 1, TrackPatch{Audio: &audio})
		if err != nil {
			t.Fatalf("Update = %v", err)
		}
		if got.AudioURL == oldURL {
			t.Error("audio url unchanged after replace")
		}
		if _, ok := blobs.objects[oldURL]; ok {
			t.Error("old blob still present after replace")
		}
		if m.tracks[created.ID].AudioURL != got.AudioURL {
			t.Error("record does not reference the new blob")
		}
	})

	t.Run("only the owner can update", func(t *testing.T) {
		m, _, svc := newTrackFixture()
		track := m.addTrack(1, "Mine")

		title := "Stolen"
		_, err := svc.Update(ctx, track.ID, 2, TrackPatch{Title: &title})
		if !apperr.IsAuthorization(err) {
			t.Errorf("Update by non-owner = %v, want authorization error", err)
		}
	})
}

func TestTrackDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades comments likes and memberships", func(t *testing.T) {
		m, blobs, svc := newTrackFixture()

		created, err := svc.Create(ctx, 1, CreateTrackInput{
			Title: "Doomed",
			Audio: audioFile("doomed.mp3", "bytes"),
		})
		if err != nil {
			t.Fatalf("Create = %v", err)
		}

		m.nextCommentID++
		m.comments[m.nextCommentID] = &model.Comment{ID: m.nextCommentID, Text: "bye", UserID: 9, TrackID: created.ID}
		m.likes[[2]int64{9, created.ID}] = created.CreatedAt
		playlist := m.addPlaylist(9, "Other User's Mix")
		m.memberships[[2]int64{playlist.ID, created.ID}] = true

		if err := svc.Delete(ctx, created.ID, 1); err != nil {
			t.Fatalf("Delete = %v", err)
		}

		if _, ok := m.tracks[created.ID]; ok {
			t.Error("track row survived delete")
		}
		if len(m.comments) != 0 {
			t.Errorf("%d comments survived delete", len(m.comments))
		}
		if len(m.likes) != 0 {
			t.Errorf("%d likes survived delete", len(m.likes))
		}
		if len(m.memberships) != 0 {
			t.Errorf("%d memberships survived delete", len(m.memberships))
		}
		if _, ok := m.playlists[playlist.ID]; !ok {
			t.Error("playlist itself deleted; only the membership should go")
		}
		if len(blobs.objects) != 0 {
			t.Errorf("%d blobs survived delete", len(blobs.objects))
		}
		if m.commits != 1 {
			t.Errorf("commits = %d, want 1", m.commits)
		}
	})

	t.Run("only the owner can delete", func(t *testing.T) {
		m, _, svc := newTrackFixture()
		track := m.addTrack(1, "Mine")

		if err := svc.Delete(ctx, track.ID, 2); !apperr.IsAuthorization(err) {
			t.Errorf("Delete by non-owner = %v, want authorization error", err)
		}
		if _, ok := m.tracks[track.ID]; !ok {
			t.Error("track deleted by non-owner")
		}
	})

	t.Run("missing track is 404", func(t *testing.T) {
		_, _, svc := newTrackFixture()
		if err := svc.Delete(ctx, 42, 1); !apperr.IsNotFound(err) {
			t.Errorf("Delete = %v, want not found", err)
		}
	})
}
