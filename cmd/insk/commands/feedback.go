package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/pkg/insk"
)

// FeedbackAddAction records a reaction to an article.
func FeedbackAddAction(ctx context.Context, cmd *cli.Command) error {
	id, err := articleIDFlag(cmd)
	if err != nil {
		return err
	}
	req := insk.CreateFeedbackRequest{FeedbackText: cmd.String("text")}
	switch {
	case cmd.Bool("like") && cmd.Bool("dislike"):
		return fmt.Errorf("--like and --dislike are mutually exclusive")
	case cmd.Bool("like"):
		v := true
		req.Liked = &v
	case cmd.Bool("dislike"):
		v := false
		req.Liked = &v
	}
	if req.Liked == nil && req.FeedbackText == "" {
		return fmt.Errorf("nothing to record: pass --like, --dislike or --text")
	}

	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	created, err := app.API.Feedback.Create(ctx, id, req)
	if err != nil {
		return describeErr(err)
	}
	fmt.Printf("feedback %d recorded for article %d\n", created.FeedbackID, created.ArticleID)
	return nil
}

// FeedbackListAction prints all feedback for an article.
func FeedbackListAction(ctx context.Context, cmd *cli.Command) error {
	id, err := articleIDFlag(cmd)
	if err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	items, err := app.API.Feedback.List(ctx, id)
	if err != nil {
		return describeErr(err)
	}
	for _, f := range items {
		mark := "-"
		if f.Liked != nil {
			if *f.Liked {
				mark = "+1"
			} else {
				mark = "-1"
			}
		}
		fmt.Printf("%3s  %-24s  %s\n", mark, f.UserEmail, f.FeedbackText)
	}
	return nil
}

// FeedbackSummaryAction prints aggregated reactions for an article.
func FeedbackSummaryAction(ctx context.Context, cmd *cli.Command) error {
	id, err := articleIDFlag(cmd)
	if err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	sum, err := app.API.Feedback.Summary(ctx, id)
	if err != nil {
		return describeErr(err)
	}
	fmt.Printf("article %d: %d likes, %d dislikes\n", sum.ArticleID, sum.Likes, sum.Dislikes)
	for _, c := range sum.RecentComments {
		fmt.Printf("  - %s\n", c)
	}
	if sum.MyFeedback != nil && sum.MyFeedback.Liked != nil {
		if *sum.MyFeedback.Liked {
			fmt.Println("you liked this article")
		} else {
			fmt.Println("you disliked this article")
		}
	}
	return nil
}

func articleIDFlag(cmd *cli.Command) (int64, error) {
	raw := cmd.String("article")
	if raw == "" {
		return 0, fmt.Errorf("--article required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid article id %q", raw)
	}
	return id, nil
}
