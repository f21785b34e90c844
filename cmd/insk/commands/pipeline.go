package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/pkg/pipeline"
)

const newsJobKind = "news-pipeline"

// PipelineRunAction triggers the backend news pipeline and tracks it in the
// foreground until completion is inferred or the attempt budget runs out.
// Ctrl-C aborts tracking (the backend job itself cannot be stopped).
func PipelineRunAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Println("pipeline triggered; watching the article feed for new items...")
	job, err := app.Tracker.Run(ctx, newsJobKind, app.API.PipelineTrigger())
	switch {
	case errors.Is(err, pipeline.ErrAborted):
		fmt.Println("tracking aborted; the backend job keeps running")
		return nil
	case err != nil:
		return describeErr(err)
	}

	switch job.State {
	case pipeline.StateCompleted:
		fmt.Printf("pipeline completed after %d poll(s); new articles are in\n", job.Attempt)
	case pipeline.StateTimedOut:
		fmt.Printf("no new articles observed after %d polls; processing is likely complete, please check manually\n", job.Attempt)
	default:
		fmt.Printf("pipeline ended in state %s\n", job.State)
	}
	return nil
}

// PipelineStatusAction prints the most recent run for this process.
func PipelineStatusAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Tracker.Running(newsJobKind) {
		fmt.Println("news pipeline: running")
		return nil
	}
	if job, ok := app.Tracker.Last(newsJobKind); ok {
		fmt.Printf("news pipeline: %s (run %s, %d polls)\n", job.State, job.ID, job.Attempt)
		return nil
	}
	fmt.Println("news pipeline: no runs this session")
	return nil
}
