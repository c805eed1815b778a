package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

const (
	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 20
	recommendationReason       = "Based on your reading preferences"
)

type Recommendation struct {
	Book   model.Book `json:"book"`
	Score  float64    `json:"score"`
	Reason string     `json:"reason"`
}

// RecommendationService is a placeholder for personalised suggestions. It
// ranks the newest books in catalog order.
type RecommendationService struct {
	bookRepository repository.BookRepository
}

func NewRecommendationService(bookRepository repository.BookRepository) *RecommendationService {
	return &RecommendationService{bookRepository: bookRepository}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecommendationLimit
	}
	return min(limit, MaxRecommendationLimit)
}

// score decreases by 0.1 per rank starting at 0.9 and never drops below 0.
func score(rank int) float64 {
	s := 0.9 - 0.1*float64(rank)
	if s < 0 {
		return 0
	}
	return s
}

func (s *RecommendationService) ForUser(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	books, _, err := s.bookRepository.List(ctx, repository.BookFilter{Limit: clampLimit(limit)})
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}

	recs := make([]Recommendation, len(books))
	for i, b := range books {
		recs[i] = Recommendation{Book: b, Score: score(i), Reason: recommendationReason}
	}
	return recs, nil
}

func (s *RecommendationService) Trending(ctx context.Context, limit int) ([]model.Book, error) {
	books, err := s.bookRepository.MostRated(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load trending books: %w", err)
	}
	return books, nil
}

func (s *RecommendationService) Similar(ctx context.Context, bookID string, limit int) ([]model.Book, error) {
	book, err := s.bookRepository.ByID(ctx, bookID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	books, err := s.bookRepository.SameGenre(ctx, book, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load similar books: %w", err)
	}
	return books, nil
}
