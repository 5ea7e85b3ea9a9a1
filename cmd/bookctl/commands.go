package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"book-inventory/internal/client"
	"book-inventory/internal/config"
	"book-inventory/internal/inventory"
	"book-inventory/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries state shared by all commands. It is populated by the root
// command's PersistentPreRunE.
type app struct {
	apiBase    string
	verbose    bool
	httpClient *http.Client
	now        func() time.Time

	log  *zap.Logger
	ctrl *inventory.Controller
}

func newApp() *app {
	return &app{
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "bookctl",
		Short:        "Browse and manage the book inventory",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.apiBase == "" {
				a.apiBase = config.LoadClient().APIBase
			}
			a.log = logger.NewCLI(a.verbose)
			a.log.Debug("Using API", zap.String("base", a.apiBase))

			api := client.New(a.apiBase, client.WithHTTPClient(a.httpClient))
			a.ctrl = inventory.NewController(api)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiBase, "api", "", "API base URL (default $BOOKS_API_BASE or http://localhost:5000)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
	)
	return rootCmd
}

func newListCmd(a *app) *cobra.Command {
	var search, by string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List books, newest first",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := inventory.ParseFilterMode(by)
			if err != nil {
				return err
			}

			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load books: %w", err)
			}

			books := inventory.Filter(a.ctrl.Books(), search, mode)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderDashboard(a.ctrl.Count()))
			fmt.Fprintln(out, renderBooks(books))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search text")
	cmd.Flags().StringVar(&by, "by", string(inventory.FilterAll), "search field: all, author or genre")
	return cmd
}

// bindFormFlags registers one flag per form field
func bindFormFlags(cmd *cobra.Command, f *inventory.Form) {
	cmd.Flags().StringVar(&f.Title, "title", "", "book title")
	cmd.Flags().StringVar(&f.Author, "author", "", "author name")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "genre")
	cmd.Flags().StringVar(&f.Price, "price", "", "price, greater than zero")
	cmd.Flags().StringVar(&f.Stock, "stock", "", "copies in stock")
	cmd.Flags().StringVar(&f.PublishedYear, "year", "", "year of publication")
}

func newAddCmd(a *app) *cobra.Command {
	var form inventory.Form

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := form.Parse(a.now())
			if err != nil {
				return err
			}

			created, err := a.ctrl.Add(cmd.Context(), book)
			if err != nil {
				return fmt.Errorf("failed to add book: %w", err)
			}

			a.log.Debug("Book added", zap.String("book_id", created.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Book added: %s\n", created.ID)
			return nil
		},
	}

	bindFormFlags(cmd, &form)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var changes inventory.Form

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a book; flags not given keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			current, err := a.ctrl.Get(cmd.Context(), id)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
					return fmt.Errorf("book %s not found", id)
				}
				return fmt.Errorf("failed to load book: %w", err)
			}

			form := inventory.FormFromBook(current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = changes.Title
			}
			if flags.Changed("author") {
				form.Author = changes.Author
			}
			if flags.Changed("genre") {
				form.Genre = changes.Genre
			}
			if flags.Changed("price") {
				form.Price = changes.Price
			}
			if flags.Changed("stock") {
				form.Stock = changes.Stock
			}
			if flags.Changed("year") {
				form.PublishedYear = changes.PublishedYear
			}

			book, err := form.Parse(a.now())
			if err != nil {
				return err
			}

			if _, err := a.ctrl.Update(cmd.Context(), id, book.AsUpdate()); err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Book updated")
			return nil
		},
	}

	bindFormFlags(cmd, &changes)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a book",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if !yes {
				confirmed, err := confirm(cmd, fmt.Sprintf("Delete book %s? This cannot be undone. [y/N] ", id))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := a.ctrl.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete book: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Book deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
