package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"booknook/internal/catalog"
	"booknook/internal/client"
	"booknook/internal/config"
	"booknook/internal/pager"
	"booknook/internal/pagination"
)

// CLI is the booknook terminal client.
type CLI struct {
	Server  string        `env:"BOOKNOOK_SERVER" help:"API base URL." default:"http://localhost:8080"`
	Token   string        `env:"BOOKNOOK_TOKEN" help:"Access token for commands that need a signed-in user."`
	Timeout time.Duration `help:"Per-request timeout." default:"15s"`

	Login  LoginCmd  `cmd:"" help:"Sign in and print an access token."`
	Search SearchCmd `cmd:"" help:"Search Google Books or OpenLibrary."`
	Books  BooksCmd  `cmd:"" help:"List books in your collection."`
}

func (g *CLI) client() *client.Client {
	return client.New(client.Options{
		BaseURL:   g.Server,
		Token:     g.Token,
		UserAgent: "booknook-cli",
		Timeout:   g.Timeout,
	})
}

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `env:"BOOKNOOK_PASSWORD" required:"" help:"Account password."`
}

func (c *LoginCmd) Run(g *CLI, out io.Writer) error {
	tokens, err := g.client().Login(context.Background(), c.Email, c.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tokens.AccessToken)
	return nil
}

type SearchCmd struct {
	Query    string `arg:"" help:"Search text."`
	Source   string `short:"s" enum:"googleBooks,openLibrary" default:"googleBooks" help:"Catalog to search (googleBooks or openLibrary)."`
	Page     int    `short:"p" default:"1" help:"Page to show."`
	PageSize int    `default:"9" help:"Hits per page."`
	Add      string `help:"Add the hit with this exact title to your collection."`
}

func (c *SearchCmd) Run(g *CLI, out io.Writer) error {
	source, err := catalog.ParseSource(c.Source)
	if err != nil {
		return err
	}
	api := g.client()
	if c.Add != "" && api.Token() == "" {
		return client.ErrNotAuthenticated
	}

	ctx := context.Background()
	browser := pager.NewBrowser(api, api, source, c.PageSize)
	browser.SetQuery(c.Query)

	// The page count is unknown until the first page comes back.
	view, err := browser.Search(ctx)
	if err != nil {
		return err
	}
	if c.Page > 1 {
		browser.SetPage(c.Page)
		if view, err = browser.Search(ctx); err != nil {
			return err
		}
	}
	printResults(out, view)

	if c.Add == "" {
		return nil
	}
	for _, b := range view.Books {
		if b.Title == c.Add {
			if err := browser.Add(ctx, b); err != nil {
				return fmt.Errorf("add %q: %w", b.Title, err)
			}
			fmt.Fprintf(out, "added %q to your collection\n", b.Title)
			return nil
		}
	}
	return fmt.Errorf("no hit titled %q on page %d", c.Add, view.State.Page())
}

func printResults(out io.Writer, v pager.View) {
	if len(v.Books) == 0 {
		fmt.Fprintln(out, "no results")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHORS\tRATING\tPAGES\tPUBLISHED\tLANGUAGE")
	for _, b := range v.Books {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\t%s\t%s\n",
			b.Title, strings.Join(b.Authors, ", "), b.Rating, b.PageCount, b.PublishedDate, b.LanguageName)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d results, page %d of %d: %s\n",
		v.TotalItems, v.State.Page(), v.State.TotalPages(), formatWindow(v.Window, v.State.Page()))
}

func formatWindow(items []pagination.PageItem, current int) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if !it.Ellipsis && it.Page == current {
			parts = append(parts, "["+it.String()+"]")
			continue
		}
		parts = append(parts, it.String())
	}
	return strings.Join(parts, " ")
}

type BooksCmd struct {
	Page     int `short:"p" default:"1" help:"Page to show."`
	PageSize int `default:"20" help:"Books per page."`
}

func (c *BooksCmd) Run(g *CLI, out io.Writer) error {
	books, err := g.client().ListBooks(context.Background(), c.Page, c.PageSize)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(out, "your collection is empty")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tRATING\tPROGRESS\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d\t%s\n",
			b.Title, b.Author, b.Rating, b.CurrentReadPage, b.TotalPageCount, b.Status)
	}
	return tw.Flush()
}

func newParser(cli *CLI, out io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("booknook"),
		kong.Description("Search book catalogs and manage your collection."),
		kong.UsageOnError(),
		kong.BindTo(out, (*io.Writer)(nil)),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	config.LoadEnvFiles()

	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "booknook: %s (%s)\n", apiErr.Message, apiErr.Code)
			for _, d := range apiErr.Details {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
			}
			os.Exit(1)
		}
		parser.FatalIfErrorf(err)
	}
}
