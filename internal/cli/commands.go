package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/simplelibrary/internal/entrypoint"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *entrypoint.App) error {
				d, err := app.Reports.Dashboard(cmd.Context())
				if err != nil {
					return err
				}
				printDashboard(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}
}

func newOverdueCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List loans past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *entrypoint.App) error {
				loans, err := app.Reports.OverdueLoans(cmd.Context())
				if err != nil {
					return err
				}
				printOverdue(cmd.OutOrStdout(), loans)
				return nil
			})
		},
	}
}

func newBooksCommand(opts *rootOptions) *cobra.Command {
	books := &cobra.Command{
		Use:   "books",
		Short: "Manage the catalog",
	}
	books.AddCommand(newBooksListCommand(opts), newBooksAddCommand(opts))
	return books
}

func newBooksListCommand(opts *rootOptions) *cobra.Command {
	var sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books with their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *entrypoint.App) error {
				list, err := app.Reports.ListBooksSorted(cmd.Context(), reports.ParseSortBy(sort))
				if err != nil {
					return err
				}
				printBooks(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sort, "sort", string(reports.SortNewest), "Order: newest, title or author")
	return cmd
}

func newBooksAddCommand(opts *rootOptions) *cobra.Command {
	var in inventory.BookInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Example: `  simplelibrary books add --title "Dune" --author "Frank Herbert" --copies 3
  simplelibrary books add --title "Emma" --author "Jane Austen" --isbn 9780141439587`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *entrypoint.App) error {
				book, err := app.Inventory.AddBook(cmd.Context(), in)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), fmt.Sprintf("Added #%d %q by %s (%d copies)", book.ID, book.Title, book.Author, book.CopiesTotal))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Book title")
	cmd.Flags().StringVar(&in.Author, "author", "", "Book author")
	cmd.Flags().StringVar(&in.ISBN, "isbn", "", "ISBN (optional)")
	cmd.Flags().IntVar(&in.CopiesTotal, "copies", 1, "Number of copies")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}
