package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/pkg/insk"
)

// ArticlesListAction prints one page of the article catalog.
func ArticlesListAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	page, err := app.API.Articles.List(ctx, insk.ListParams{
		Page:     cmd.Int("page"),
		Size:     cmd.Int("size"),
		Category: cmd.String("category"),
		Source:   cmd.String("source"),
		Sort:     cmd.String("sort"),
	})
	if err != nil {
		return describeErr(err)
	}

	for _, a := range page.Content {
		ts := ""
		if !a.PublishedAt.IsZero() {
			ts = a.PublishedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%8d  %-16s  %-12s  %s\n    %s\n", a.ArticleID, ts, a.Source, a.Title, a.OriginalURL)
	}
	fmt.Printf("page %d of %d (%d articles)\n", page.Number+1, page.TotalPages, page.TotalElements)
	return nil
}

// ArticlesGetAction prints one article in detail.
func ArticlesGetAction(ctx context.Context, cmd *cli.Command) error {
	id, err := articleIDArg(cmd)
	if err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	detail, err := app.API.Articles.Get(ctx, id)
	if err != nil {
		return describeErr(err)
	}
	fmt.Printf("%s\n%s\n\n%s\n", detail.Title, detail.OriginalURL, detail.Summary)
	if detail.Insight != "" {
		fmt.Printf("\ninsight: %s\n", detail.Insight)
	}
	return nil
}

// ArticlesPDFAction saves the server-rendered PDF for an article.
func ArticlesPDFAction(ctx context.Context, cmd *cli.Command) error {
	id, err := articleIDArg(cmd)
	if err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.String("out")
	if out == "" {
		out = fmt.Sprintf("article_%d.pdf", id)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := app.API.Articles.DownloadPDF(ctx, id, f); err != nil {
		_ = os.Remove(out)
		return describeErr(err)
	}
	fmt.Printf("saved %s\n", out)
	return nil
}

func articleIDArg(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("article id required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid article id %q", raw)
	}
	return id, nil
}
