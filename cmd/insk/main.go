package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/cmd/insk/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "insk",
		Usage: "client for the INSK news-aggregation service",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "verify credentials against the backend",
				Flags:  append(globalFlags(), credentialFlags()...),
				Action: commands.LoginAction,
			},
			{
				Name:   "logout",
				Usage:  "clear session state",
				Flags:  globalFlags(),
				Action: commands.LogoutAction,
			},
			{
				Name:  "signup",
				Usage: "register a new user",
				Flags: append(globalFlags(),
					&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "account password", Required: true},
					&cli.StringFlag{Name: "department", Usage: "department code, e.g. T_CLOUD", Required: true},
				),
				Action: commands.SignUpAction,
			},
			{
				Name:  "articles",
				Usage: "browse the article catalog",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list one page of articles",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.IntFlag{Name: "page", Usage: "zero-based page number"},
							&cli.IntFlag{Name: "size", Usage: "page size", Value: 20},
							&cli.StringFlag{Name: "category", Usage: "filter by category"},
							&cli.StringFlag{Name: "source", Usage: "filter by source"},
							&cli.StringFlag{Name: "sort", Usage: "sort expression, e.g. publishedAt,desc"},
						)...),
						Action: commands.ArticlesListAction,
					},
					{
						Name:      "get",
						Usage:     "show one article",
						ArgsUsage: "<article-id>",
						Flags:     append(globalFlags(), credentialFlags()...),
						Action:    commands.ArticlesGetAction,
					},
					{
						Name:      "pdf",
						Usage:     "save the server-rendered PDF for an article",
						ArgsUsage: "<article-id>",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.StringFlag{Name: "out", Usage: "output file (default article_<id>.pdf)"},
						)...),
						Action: commands.ArticlesPDFAction,
					},
				},
			},
			{
				Name:  "pipeline",
				Usage: "drive the server-side news pipeline",
				Commands: []*cli.Command{
					{
						Name:   "run",
						Usage:  "trigger the pipeline and track completion",
						Flags:  append(globalFlags(), credentialFlags()...),
						Action: commands.PipelineRunAction,
					},
					{
						Name:   "status",
						Usage:  "show the most recent run",
						Flags:  globalFlags(),
						Action: commands.PipelineStatusAction,
					},
				},
			},
			{
				Name:  "keywords",
				Usage: "curate trending-topic keywords",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list keywords",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.BoolFlag{Name: "approved", Usage: "only approved keywords"},
						)...),
						Action: commands.KeywordsListAction,
					},
					{
						Name:      "add",
						Usage:     "add a keyword",
						ArgsUsage: "<keyword>",
						Flags:     append(globalFlags(), credentialFlags()...),
						Action:    commands.KeywordsAddAction,
					},
					{
						Name:      "rm",
						Usage:     "remove a keyword",
						ArgsUsage: "<keyword-id>",
						Flags:     append(globalFlags(), credentialFlags()...),
						Action:    commands.KeywordsRemoveAction,
					},
					{
						Name:  "recommend",
						Usage: "fetch keyword suggestions",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.StringFlag{Name: "department", Usage: "department code", Required: true},
						)...),
						Action: commands.KeywordsRecommendAction,
					},
					{
						Name:   "others",
						Usage:  "show keywords added by other users",
						Flags:  append(globalFlags(), credentialFlags()...),
						Action: commands.KeywordsOthersAction,
					},
				},
			},
			{
				Name:  "feedback",
				Usage: "react to articles",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "record a reaction",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.StringFlag{Name: "article", Usage: "article id", Required: true},
							&cli.BoolFlag{Name: "like", Usage: "thumbs up"},
							&cli.BoolFlag{Name: "dislike", Usage: "thumbs down"},
							&cli.StringFlag{Name: "text", Usage: "free-form comment"},
						)...),
						Action: commands.FeedbackAddAction,
					},
					{
						Name:  "list",
						Usage: "list feedback for an article",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.StringFlag{Name: "article", Usage: "article id", Required: true},
						)...),
						Action: commands.FeedbackListAction,
					},
					{
						Name:  "summary",
						Usage: "show aggregated reactions",
						Flags: append(globalFlags(), append(credentialFlags(),
							&cli.StringFlag{Name: "article", Usage: "article id", Required: true},
						)...),
						Action: commands.FeedbackSummaryAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "config file path", Value: ""},
		&cli.StringFlag{Name: "env", Usage: "dotenv file path", Value: ".env"},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Usage: "login email (or INSK_EMAIL)"},
		&cli.StringFlag{Name: "password", Usage: "login password (or INSK_PASSWORD)"},
	}
}
