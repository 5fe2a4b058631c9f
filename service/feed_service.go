package service

import (
	"context"

	"resona/model"
	"resona/repository"
)

// FeedQuery carries the ultimate-playlist listing parameters as parsed
// from the request.
type FeedQuery struct {
	Page    int
	PerPage int
	SortBy  string
	Genre   string
}

// FeedPage is one page of the site-wide feed with its like counts.
type FeedPage struct {
	Items      []*model.TrackWithCount `json:"items"`
	Pagination Pagination              `json:"pagination"`
}

// FeedService serves the site-wide "ultimate playlist": every track on
// the platform, optionally filtered by genre and sorted by recency or
// like count.
type FeedService struct {
	tracks repository.TrackRepository
}

// NewFeedService creates a FeedService.
func NewFeedService(tracks repository.TrackRepository) *FeedService {
	return &FeedService{tracks: tracks}
}

// List returns one page of the feed. Unknown sort values fall back to
// newest-first.
func (s *FeedService) List(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	page, perPage := clampPage(q.Page, q.PerPage)

	filter := repository.FeedFilter{
		Genre:  q.Genre,
		SortBy: q.SortBy,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	total, err := s.tracks.CountFeed(ctx, q.Genre)
	if err != nil {
		return nil, err
	}

	items, err := s.tracks.ListFeed(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.TrackWithCount{}
	}

	return &FeedPage{
		Items:      items,
		Pagination: paginationFor(page, perPage, total),
	}, nil
}
