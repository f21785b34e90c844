package insk

import (
	"context"
	"fmt"

	"github.com/inskhq/insk-go/pkg/gateway"
)

// KeywordsService curates trending-topic keywords.
type KeywordsService struct {
	gw *gateway.Client
}

// Approved returns the calling user's approved keywords.
func (s *KeywordsService) Approved(ctx context.Context) ([]Keyword, error) {
	var out []Keyword
	err := s.gw.Get(ctx, "/keywords/approved", nil, &out)
	return out, err
}

// All returns every keyword regardless of approval state.
func (s *KeywordsService) All(ctx context.Context) ([]Keyword, error) {
	var out []Keyword
	err := s.gw.Get(ctx, "/keywords", nil, &out)
	return out, err
}

// Create registers a new keyword.
func (s *KeywordsService) Create(ctx context.Context, keyword string) (Keyword, error) {
	var out Keyword
	err := s.gw.Post(ctx, "/keywords", map[string]string{"keyword": keyword}, &out)
	return out, err
}

// Delete removes a keyword.
func (s *KeywordsService) Delete(ctx context.Context, keywordID int64) error {
	return s.gw.Delete(ctx, fmt.Sprintf("/keywords/%d", keywordID))
}

// Recommend asks the backend for keyword suggestions for a department.
func (s *KeywordsService) Recommend(ctx context.Context, department string) (KeywordRecommendation, error) {
	var out KeywordRecommendation
	err := s.gw.Post(ctx, "/keywords/recommend", map[string]string{"department": department}, &out)
	return out, err
}

// Approve accepts a recommended keyword.
func (s *KeywordsService) Approve(ctx context.Context, keyword string) error {
	return s.gw.Post(ctx, "/keywords/approve", map[string]string{"keyword": keyword}, nil)
}

// Reject declines a recommended keyword.
func (s *KeywordsService) Reject(ctx context.Context, keyword string) error {
	return s.gw.Post(ctx, "/keywords/reject", map[string]string{"keyword": keyword}, nil)
}

// Others returns keywords added by other users, deduplicated with counts.
func (s *KeywordsService) Others(ctx context.Context) ([]OtherUsersKeyword, error) {
	var out []OtherUsersKeyword
	err := s.gw.Get(ctx, "/keywords/others", nil, &out)
	return out, err
}

// ManagedApproved returns the administratively approved keyword set.
func (s *KeywordsService) ManagedApproved(ctx context.Context) ([]Keyword, error) {
	var out []Keyword
	err := s.gw.Get(ctx, "/keywords/manage/approved", nil, &out)
	return out, err
}
