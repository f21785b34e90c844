package insk

import (
	"context"
	"fmt"

	"github.com/inskhq/insk-go/pkg/gateway"
)

// FeedbackService collects user reactions to articles.
type FeedbackService struct {
	gw *gateway.Client
}

// CreateFeedbackRequest is one reaction. Liked may be nil for comment-only
// feedback.
type CreateFeedbackRequest struct {
	Liked        *bool  `json:"liked"`
	FeedbackText string `json:"feedbackText,omitempty"`
}

// Create records the calling user's reaction to an article.
func (s *FeedbackService) Create(ctx context.Context, articleID int64, req CreateFeedbackRequest) (Feedback, error) {
	var out Feedback
	err := s.gw.Post(ctx, fmt.Sprintf("/articles/%d/feedbacks", articleID), req, &out)
	return out, err
}

// List returns all feedback for an article.
func (s *FeedbackService) List(ctx context.Context, articleID int64) ([]Feedback, error) {
	var out []Feedback
	err := s.gw.Get(ctx, fmt.Sprintf("/articles/%d/feedbacks", articleID), nil, &out)
	return out, err
}

// Summary returns aggregated reactions, including the caller's own.
func (s *FeedbackService) Summary(ctx context.Context, articleID int64) (FeedbackSummary, error) {
	var out FeedbackSummary
	err := s.gw.Get(ctx, fmt.Sprintf("/articles/%d/feedbacks/summary", articleID), nil, &out)
	return out, err
}
