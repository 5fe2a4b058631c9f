package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"resona/model"
	"resona/repository"
)

// memStore is the shared in-memory backing for the repository fakes.
// The Tx-variant methods mutate it directly; commits and rollbacks are
// counted so tests can assert the transaction actually closed.
type memStore struct {
	users       map[int64]*model.User
	tracks      map[int64]*model.Track
	comments    map[int64]*model.Comment
	likes       map[[2]int64]time.Time // [userID, trackID]
	playlists   map[int64]*model.Playlist
	memberships map[[2]int64]bool // [playlistID, trackID]

	nextUserID, nextTrackID, nextCommentID, nextPlaylistID int64

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int64]*model.User{},
		tracks:      map[int64]*model.Track{},
		comments:    map[int64]*model.Comment{},
		likes:       map[[2]int64]time.Time{},
		playlists:   map[int64]*model.Playlist{},
		memberships: map[[2]int64]bool{},
	}
}

func (m *memStore) addTrack(userID int64, title string) *model.Track {
	m.nextTrackID++
	track := &model.Track{
		ID:        m.nextTrackID,
		UserID:    userID,
		Title:     title,
		AudioURL:  fmt.Sprintf("/uploads/audio/%d.mp3", m.nextTrackID),
		CreatedAt: time.Now(),
	}
	m.tracks[track.ID] = track
	return track
}

func (m *memStore) addPlaylist(userID int64, name string) *model.Playlist {
	m.nextPlaylistID++
	p := &model.Playlist{ID: m.nextPlaylistID, UserID: userID, Name: name, CreatedAt: time.Now()}
	m.playlists[p.ID] = p
	return p
}

// --- track repository fake ---

type fakeTrackRepo struct {
	m         *memStore
	createErr error
	updateErr error
	getErr    error
}

func (r *fakeTrackRepo) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.m.nextTrackID++
	track.CreatedAt = time.Now()
	stored := *track
	stored.ID = r.m.nextTrackID
	r.m.tracks[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeTrackRepo) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	track, ok := r.m.tracks[id]
	if !ok {
		return nil, nil
	}
	copied := *track
	return &copied, nil
}

func (r *fakeTrackRepo) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	out := make([]*model.Track, 0)
	for _, track := range r.m.tracks {
		if track.UserID == userID {
			copied := *track
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTrackRepo) UpdateTrack(ctx context.Context, track *model.Track) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.m.tracks[track.ID]; !ok {
		return fmt.Errorf("track %d not found", track.ID)
	}
	copied := *track
	r.m.tracks[track.ID] = &copied
	return nil
}

func (r *fakeTrackRepo) ListFeed(ctx context.Context, filter repository.FeedFilter) ([]*model.TrackWithCount, error) {
	matched := r.feedMatches(filter.Genre)
	if filter.SortBy == "likes" {
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].LikeCount != matched[j].LikeCount {
				return matched[i].LikeCount > matched[j].LikeCount
			}
			return matched[i].ID > matched[j].ID
		})
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	}

	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *fakeTrackRepo) CountFeed(ctx context.Context, genre string) (int64, error) {
	return int64(len(r.feedMatches(genre))), nil
}

func (r *fakeTrackRepo) feedMatches(genre string) []*model.TrackWithCount {
	out := make([]*model.TrackWithCount, 0)
	for _, track := range r.m.tracks {
		if genre != "" && !strings.Contains(strings.ToLower(track.Genre), strings.ToLower(genre)) {
			continue
		}
		var count int64
		for key := range r.m.likes {
			if key[1] == track.ID {
				count++
			}
		}
		out = append(out, &model.TrackWithCount{Track: *track, LikeCount: count})
	}
	return out
}

func (r *fakeTrackRepo) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }
func (r *fakeTrackRepo) RollbackTx(tx *sql.Tx)                        { r.m.rollbacks++ }
func (r *fakeTrackRepo) CommitTx(tx *sql.Tx) error {
	r.m.commits++
	return nil
}

func (r *fakeTrackRepo) DeleteTrackTx(tx *sql.Tx, trackID int64) error {
	delete(r.m.tracks, trackID)
	return nil
}

// --- like repository fake ---

type fakeLikeRepo struct {
	m         *memStore
	createErr error
}

func (r *fakeLikeRepo) CreateLike(ctx context.Context, userID, trackID int64) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := [2]int64{userID, trackID}
	if _, ok := r.m.likes[key]; ok {
		return repository.ErrAlreadyLiked
	}
	r.m.likes[key] = time.Now()
	return nil
}

func (r *fakeLikeRepo) DeleteLike(ctx context.Context, userID, trackID int64) (bool, error) {
	key := [2]int64{userID, trackID}
	if _, ok := r.m.likes[key]; !ok {
		return false, nil
	}
	delete(r.m.likes, key)
	return true, nil
}

func (r *fakeLikeRepo) LikeExists(ctx context.Context, userID, trackID int64) (bool, error) {
	_, ok := r.m.likes[[2]int64{userID, trackID}]
	return ok, nil
}

func (r *fakeLikeRepo) CountByTrack(ctx context.Context, trackID int64) (int64, error) {
	var count int64
	for key := range r.m.likes {
		if key[1] == trackID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLikeRepo) ListByTrack(ctx context.Context, trackID int64) ([]*model.Like, error) {
	out := make([]*model.Like, 0)
	for key, at := range r.m.likes {
		if key[1] == trackID {
			out = append(out, &model.Like{UserID: key[0], TrackID: key[1], CreatedAt: at})
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) DeleteByTrackTx(tx *sql.Tx, trackID int64) error {
	for key := range r.m.likes {
		if key[1] == trackID {
			delete(r.m.likes, key)
		}
	}
	return nil
}

// --- comment repository fake ---

type fakeCommentRepo struct {
	m *memStore
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	r.m.nextCommentID++
	stored := *comment
	stored.ID = r.m.nextCommentID
	stored.CreatedAt = time.Now()
	r.m.comments[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeCommentRepo) GetCommentByIDAndUser(ctx context.Context, id, userID int64) (*model.Comment, error) {
	comment, ok := r.m.comments[id]
	if !ok || comment.UserID != userID {
		return nil, nil
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) ListByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*model.Comment, error) {
	all := make([]*model.Comment, 0)
	for _, comment := range r.m.comments {
		if comment.TrackID == trackID {
			copied := *comment
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeCommentRepo) CountByTrack(ctx context.Context, trackID int64) (int64, error) {
	var count int64
	for _, comment := range r.m.comments {
		if comment.TrackID == trackID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCommentRepo) UpdateComment(ctx context.Context, comment *model.Comment) error {
	existing, ok := r.m.comments[comment.ID]
	if !ok || existing.UserID != comment.UserID {
		return nil
	}
	copied := *comment
	r.m.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) DeleteComment(ctx context.Context, id, userID int64) (bool, error) {
	existing, ok := r.m.comments[id]
	if !ok || existing.UserID != userID {
		return false, nil
	}
	delete(r.m.comments, id)
	return true, nil
}

func (r *fakeCommentRepo) DeleteByTrackTx(tx *sql.Tx, trackID int64) error {
	for id, comment := range r.m.comments {
		if comment.TrackID == trackID {
			delete(r.m.comments, id)
		}
	}
	return nil
}

// --- playlist repository fake ---

type fakePlaylistRepo struct {
	m      *memStore
	addErr error
}

func (r *fakePlaylistRepo) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	r.m.nextPlaylistID++
	stored := *playlist
	stored.ID = r.m.nextPlaylistID
	stored.CreatedAt = time.Now()
	r.m.playlists[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakePlaylistRepo) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	playlist, ok := r.m.playlists[id]
	if !ok {
		return nil, nil
	}
	copied := *playlist
	return &copied, nil
}

func (r *fakePlaylistRepo) GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	out := make([]*model.Playlist, 0)
	for _, playlist := range r.m.playlists {
		if playlist.UserID == userID {
			copied := *playlist
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlaylistRepo) RenamePlaylist(ctx context.Context, id int64, name string) error {
	if playlist, ok := r.m.playlists[id]; ok {
		playlist.Name = name
	}
	return nil
}

func (r *fakePlaylistRepo) AddTrack(ctx context.Context, playlistID, trackID int64) error {
	if r.addErr != nil {
		return r.addErr
	}
	key := [2]int64{playlistID, trackID}
	if r.m.memberships[key] {
		return repository.ErrAlreadyInPlaylist
	}
	r.m.memberships[key] = true
	return nil
}

func (r *fakePlaylistRepo) RemoveTrack(ctx context.Context, playlistID, trackID int64) (bool, error) {
	key := [2]int64{playlistID, trackID}
	if !r.m.memberships[key] {
		return false, nil
	}
	delete(r.m.memberships, key)
	return true, nil
}

func (r *fakePlaylistRepo) HasTrack(ctx context.Context, playlistID, trackID int64) (bool, error) {
	return r.m.memberships[[2]int64{playlistID, trackID}], nil
}

func (r *fakePlaylistRepo) GetPlaylistTracks(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	out := make([]*model.Track, 0)
	for key := range r.m.memberships {
		if key[0] != playlistID {
			continue
		}
		if track, ok := r.m.tracks[key[1]]; ok {
			copied := *track
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlaylistRepo) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }
func (r *fakePlaylistRepo) RollbackTx(tx *sql.Tx)                        { r.m.rollbacks++ }
func (r *fakePlaylistRepo) CommitTx(tx *sql.Tx) error {
	r.m.commits++
	return nil
}

func (r *fakePlaylistRepo) DeletePlaylistTx(tx *sql.Tx, playlistID int64) error {
	delete(r.m.playlists, playlistID)
	return nil
}

func (r *fakePlaylistRepo) DeleteMembershipsTx(tx *sql.Tx, playlistID int64) error {
	for key := range r.m.memberships {
		if key[0] == playlistID {
			delete(r.m.memberships, key)
		}
	}
	return nil
}

func (r *fakePlaylistRepo) RemoveTrackEverywhereTx(tx *sql.Tx, trackID int64) error {
	for key := range r.m.memberships {
		if key[1] == trackID {
			delete(r.m.memberships, key)
		}
	}
	return nil
}

// --- user repository fake ---

type fakeUserRepo struct {
	m *memStore
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	r.m.nextUserID++
	stored := *user
	stored.ID = r.m.nextUserID
	r.m.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

// --- blob store fake for the upload coordinator ---

type fakeBlobStore struct {
	objects map[string][]byte
	seq     int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (s *fakeBlobStore) Put(ctx context.Context, name string, rd io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	s.seq++
	url := fmt.Sprintf("/uploads/audio/%d_%s", s.seq, name)
	s.objects[url] = data
	return url, nil
}

func (s *fakeBlobStore) Remove(ctx context.Context, url string) error {
	if _, ok := s.objects[url]; !ok {
		return fmt.Errorf("no such object %s", url)
	}
	delete(s.objects, url)
	return nil
}
