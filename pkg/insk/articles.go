package insk

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/inskhq/insk-go/pkg/gateway"
)

// ArticlesService reads the aggregated article catalog and drives the news
// pipeline.
type ArticlesService struct {
	gw *gateway.Client
}

// ListParams filter and paginate an article listing.
type ListParams struct {
	Page     int
	Size     int
	Category string
	Source   string
	Sort     string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Source != "" {
		q.Set("source", p.Source)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}

// List returns one page of articles, newest first by default.
func (s *ArticlesService) List(ctx context.Context, params ListParams) (Page[Article], error) {
	var page Page[Article]
	err := s.gw.Get(ctx, "/articles", params.values(), &page)
	return page, err
}

// Get returns one article with its analysis fields.
func (s *ArticlesService) Get(ctx context.Context, articleID int64) (ArticleDetail, error) {
	var detail ArticleDetail
	err := s.gw.Get(ctx, fmt.Sprintf("/articles/%d", articleID), nil, &detail)
	return detail, err
}

// Favorites returns the calling user's liked articles.
func (s *ArticlesService) Favorites(ctx context.Context, params ListParams) (Page[Article], error) {
	var page Page[Article]
	err := s.gw.Get(ctx, "/articles/favorites", params.values(), &page)
	return page, err
}

// Top5ByDepartment returns the highest-scored articles for a department.
func (s *ArticlesService) Top5ByDepartment(ctx context.Context, department string) ([]ArticleSimple, error) {
	var out []ArticleSimple
	err := s.gw.Get(ctx, "/articles/top5/"+url.PathEscape(department), nil, &out)
	return out, err
}

// Score returns an article's relevance score.
func (s *ArticlesService) Score(ctx context.Context, articleID int64) (ArticleScore, error) {
	var score ArticleScore
	err := s.gw.Get(ctx, fmt.Sprintf("/articles/%d/score", articleID), nil, &score)
	return score, err
}

// UpdateScore recomputes an article's relevance score.
func (s *ArticlesService) UpdateScore(ctx context.Context, articleID int64) (ArticleScore, error) {
	var score ArticleScore
	err := s.gw.Post(ctx, fmt.Sprintf("/articles/%d/score/update", articleID), nil, &score)
	return score, err
}

// RunPipeline triggers the server-side news batch pipeline. The backend only
// acknowledges; completion must be inferred, see the pipeline package.
// Triggering twice starts two backend jobs.
func (s *ArticlesService) RunPipeline(ctx context.Context) (string, error) {
	var ack string
	err := s.gw.Post(ctx, "/articles/run-pipeline", nil, &ack)
	return ack, err
}

// DownloadPDF streams the server-rendered PDF for an article into w. The
// client never generates PDFs, it only saves what the backend returns.
func (s *ArticlesService) DownloadPDF(ctx context.Context, articleID int64, w io.Writer) error {
	return s.gw.GetRaw(ctx, fmt.Sprintf("/articles/%d/pdf", articleID), nil, w)
}
