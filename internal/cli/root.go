package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/paywall-reader/internal/bypass"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/formatter"
	"github.com/user/paywall-reader/pkg/config"
	"github.com/user/paywall-reader/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrMissingURL is returned when no article URL was given.
	ErrMissingURL = errors.New("article URL is required")
	// ErrNotFetched is returned after the failure message has already been printed.
	ErrNotFetched = errors.New("article not fetched")
)

const usageExamples = `  paywall-reader https://www.ft.com/content/12345
  paywall-reader https://www.ft.com/content/12345 --method 4
  paywall-reader https://www.ft.com/content/12345 --try-all --save`

type rootOptions struct {
	method     int
	tryAll     bool
	save       bool
	visible    bool
	output     string
	configPath string
}

// NewRootCommand returns the paywall-reader command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewApp)
}

func newRootCommand(newApp AppFactory) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "paywall-reader <article-url>",
		Short: "Read paywalled articles through public bypass mirrors",
		Long: "Loads an article through a paywall bypass mirror in a headless browser\n" +
			"and prints its title, author, date and body.\n\n" +
			"Bypass methods:\n" + methodTable(),
		Example:       usageExamples,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return ErrMissingURL
			}
			return runRead(cmd, args[0], opts, newApp)
		},
	}

	flags := root.Flags()
	flags.IntVar(&opts.method, "method", int(bypass.Default), "bypass method to use (1-6)")
	flags.BoolVar(&opts.tryAll, "try-all", false, "try all methods until one succeeds")
	flags.BoolVar(&opts.save, "save", false, "save the article to a file")
	flags.BoolVar(&opts.visible, "visible", false, "run the browser in visible mode")
	flags.StringVarP(&opts.output, "output", "o", "", "file used by --save (default article.txt)")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./paywall-reader.yaml)")

	root.AddCommand(newServeCommand(&opts.configPath, newApp), newMethodsCommand())
	return root
}

func runRead(cmd *cobra.Command, articleURL string, opts *rootOptions, newApp AppFactory) error {
	method, err := bypass.Parse(opts.method)
	if err != nil {
		return fmt.Errorf("method must be between %d and %d", bypass.RemovePaywalls, bypass.RemovePaywalls5)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.visible {
		cfg.Browser.Headless = false
	}
	if opts.output != "" {
		cfg.Output.File = opts.output
	}

	format := cfg.Log.Format
	if format == "" {
		format = logger.FormatConsole
	}
	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	var article *entity.Article
	if opts.tryAll {
		article, err = app.Reader.ReadAny(ctx, articleURL)
	} else {
		article, err = app.Reader.Read(ctx, articleURL, method)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("Read finished without an article", zap.Error(err))
	}

	printer := formatter.NewPrinter(cmd.OutOrStdout())
	if err != nil || article == nil {
		_ = printer.Println("\nFailed to fetch article with the selected method(s).")
		if !opts.tryAll {
			_ = printer.Println("Try using --try-all to attempt all bypass methods.")
		}
		return ErrNotFetched
	}

	if err := printer.Println(""); err != nil {
		return err
	}
	if err := printer.Print(article); err != nil {
		return err
	}

	if opts.save {
		if err := formatter.SaveToFile(cfg.Output.File, article); err != nil {
			return fmt.Errorf("failed to save article: %w", err)
		}
		return printer.Println("\nArticle saved to: " + cfg.Output.File)
	}
	return nil
}
