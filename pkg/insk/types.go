package insk

import (
	"fmt"
	"strings"
	"time"
)

// Time tolerates both RFC3339 and the backend's zone-less LocalDateTime
// serialization ("2006-01-02T15:04:05"). Zone-less values are wall-clock
// times in the server's zone, not UTC; they parse in local time so that
// freshness comparisons against the local clock stay meaningful.
type Time struct {
	time.Time
}

var zonedLayouts = []string{
	time.RFC3339Nano,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("insk: unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
}

// Article is one aggregated news record.
type Article struct {
	ArticleID   int64  `json:"articleId"`
	Title       string `json:"title"`
	OriginalURL string `json:"originalUrl"`
	Summary     string `json:"summary"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	Country     string `json:"country"`
	Language    string `json:"language"`
	PublishedAt Time   `json:"publishedAt"`
}

// ArticleDetail extends Article with analysis fields.
type ArticleDetail struct {
	Article
	Insight string `json:"insight"`
	Tags    string `json:"tags"`
}

// ArticleSimple is the compact representation used by ranking endpoints.
type ArticleSimple struct {
	ArticleID   int64   `json:"articleId"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	Source      string  `json:"source,omitempty"`
	PublishedAt Time    `json:"publishedAt,omitempty"`
}

// ArticleScore is the relevance score of one article.
type ArticleScore struct {
	ArticleID int64   `json:"articleId"`
	Score     float64 `json:"score"`
}

// Keyword is one trending-topic keyword.
type Keyword struct {
	KeywordID int64  `json:"keywordId"`
	Keyword   string `json:"keyword"`
	Approved  bool   `json:"approved"`
	Category  string `json:"category,omitempty"`
}

// OtherUsersKeyword aggregates a keyword across other users.
type OtherUsersKeyword struct {
	Keyword  string `json:"keyword"`
	Approved bool   `json:"approved"`
	Count    int    `json:"count"`
}

// KeywordRecommendation carries suggested keywords for a department.
type KeywordRecommendation struct {
	Keywords []string `json:"keywords"`
}

// Feedback is one user's reaction to an article. Liked is nil when the user
// left only a comment.
type Feedback struct {
	FeedbackID   int64  `json:"feedbackId"`
	ArticleID    int64  `json:"articleId"`
	Liked        *bool  `json:"liked"`
	FeedbackText string `json:"feedbackText,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	Department   string `json:"department,omitempty"`
	CreatedAt    Time   `json:"createdAt"`
}

// FeedbackSummary aggregates reactions for one article.
type FeedbackSummary struct {
	ArticleID      int64       `json:"articleId"`
	Likes          int64       `json:"likes"`
	Dislikes       int64       `json:"dislikes"`
	RecentComments []string    `json:"recentComments"`
	MyFeedback     *MyFeedback `json:"myFeedback"`
}

// MyFeedback is the calling user's own reaction inside a summary.
type MyFeedback struct {
	Liked *bool  `json:"liked"`
	Text  string `json:"text,omitempty"`
}

// Credentials identify a user at login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest registers a new user.
type SignUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

// SignUpResponse acknowledges a registration.
type SignUpResponse struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// PasswordResetTicket is issued by the forgot-password endpoint.
type PasswordResetTicket struct {
	ResetToken string `json:"resetToken"`
	Message    string `json:"message"`
}
