package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

// KeywordsListAction prints the calling user's keywords.
func KeywordsListAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	fetch := app.API.Keywords.All
	if cmd.Bool("approved") {
		fetch = app.API.Keywords.Approved
	}
	kws, err := fetch(ctx)
	if err != nil {
		return describeErr(err)
	}
	for _, k := range kws {
		state := "pending"
		if k.Approved {
			state = "approved"
		}
		fmt.Printf("%6d  %-8s  %s\n", k.KeywordID, state, k.Keyword)
	}
	return nil
}

// KeywordsAddAction registers a new keyword.
func KeywordsAddAction(ctx context.Context, cmd *cli.Command) error {
	word := cmd.Args().First()
	if word == "" {
		return fmt.Errorf("keyword required")
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	created, err := app.API.Keywords.Create(ctx, word)
	if err != nil {
		return describeErr(err)
	}
	fmt.Printf("added keyword %q (id %d)\n", created.Keyword, created.KeywordID)
	return nil
}

// KeywordsRemoveAction deletes a keyword by id.
func KeywordsRemoveAction(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid keyword id %q", raw)
	}
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.API.Keywords.Delete(ctx, id); err != nil {
		return describeErr(err)
	}
	fmt.Printf("removed keyword %d\n", id)
	return nil
}

// KeywordsRecommendAction asks for suggestions and optionally approves them
// interactively via flags.
func KeywordsRecommendAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	rec, err := app.API.Keywords.Recommend(ctx, cmd.String("department"))
	if err != nil {
		return describeErr(err)
	}
	if len(rec.Keywords) == 0 {
		fmt.Println("no recommendations")
		return nil
	}
	for _, k := range rec.Keywords {
		fmt.Println(k)
	}
	return nil
}

// KeywordsOthersAction shows keywords added by other users.
func KeywordsOthersAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	kws, err := app.API.Keywords.Others(ctx)
	if err != nil {
		return describeErr(err)
	}
	for _, k := range kws {
		fmt.Printf("%4dx  %s\n", k.Count, k.Keyword)
	}
	return nil
}
