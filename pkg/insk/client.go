// Package insk binds the INSK news-aggregation API. Every call goes through
// the gateway chokepoint, so credential injection, timeouts and error
// classification are uniform across services.
package insk

import (
	"context"

	"github.com/inskhq/insk-go/pkg/gateway"
	"github.com/inskhq/insk-go/pkg/pipeline"
	"github.com/inskhq/insk-go/pkg/session"
)

// Client groups the service bindings.
type Client struct {
	gw    *gateway.Client
	store session.Store

	Auth     *AuthService
	Articles *ArticlesService
	Keywords *KeywordsService
	Feedback *FeedbackService
}

// New wires the service bindings over an existing gateway client. The store
// must be the same one the gateway injects credentials from.
func New(gw *gateway.Client, store session.Store) *Client {
	c := &Client{gw: gw, store: store}
	c.Auth = &AuthService{gw: gw, store: store}
	c.Articles = &ArticlesService{gw: gw}
	c.Keywords = &KeywordsService{gw: gw}
	c.Feedback = &FeedbackService{gw: gw}
	return c
}

// NewsFeed adapts the article listing into the job tracker's observation
// feed: the first page, newest first, supplies the completion markers.
func (c *Client) NewsFeed() pipeline.Feed {
	return &newsFeed{articles: c.Articles}
}

// PipelineTrigger adapts the run-pipeline endpoint for the job tracker.
func (c *Client) PipelineTrigger() pipeline.Trigger {
	return func(ctx context.Context) error {
		_, err := c.Articles.RunPipeline(ctx)
		return err
	}
}

type newsFeed struct {
	articles *ArticlesService
}

func (f *newsFeed) Newest(ctx context.Context) ([]pipeline.Item, error) {
	page, err := f.articles.List(ctx, ListParams{Page: 0, Size: 10})
	if err != nil {
		return nil, err
	}
	items := make([]pipeline.Item, 0, len(page.Content))
	for _, a := range page.Content {
		items = append(items, pipeline.Item{ID: a.ArticleID, PublishedAt: a.PublishedAt.Time})
	}
	return items, nil
}
