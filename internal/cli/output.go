package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(18)
)

const dateLayout = "2006-01-02"

func success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+msg)
}

func printDashboard(w io.Writer, d reports.Dashboard) {
	fmt.Fprintln(w, titleStyle.Render("Library"))
	row := func(label string, value int64, style lipgloss.Style) {
		fmt.Fprintln(w, labelStyle.Render(label)+style.Render(fmt.Sprint(value)))
	}
	row("Books", d.TotalBooks, lipgloss.NewStyle())
	row("Available copies", d.AvailableCopies, lipgloss.NewStyle())
	row("Active loans", d.ActiveLoans, lipgloss.NewStyle())

	overdue := lipgloss.NewStyle()
	if d.OverdueLoans > 0 {
		overdue = warningStyle
	}
	row("Overdue loans", d.OverdueLoans, overdue)
}

func printOverdue(w io.Writer, loans []reports.LoanView) {
	if len(loans) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No overdue loans."))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Overdue loans (%d)", len(loans))))
	for _, l := range loans {
		title := l.BookTitle
		if title == "" {
			title = fmt.Sprintf("book #%d", l.BookID)
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			warningStyle.Render(l.DueAt.Format(dateLayout)),
			l.Borrower,
			mutedStyle.Render(title),
		)
	}
}

func printBooks(w io.Writer, books []entities.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("The catalog is empty."))
		return
	}
	for _, b := range books {
		avail := fmt.Sprintf("%d/%d", b.CopiesAvailable, b.CopiesTotal)
		if b.CopiesAvailable == 0 {
			avail = warningStyle.Render(avail)
		}
		fmt.Fprintf(w, "#%-4d %s  %s %s\n", b.ID, avail, b.Title, mutedStyle.Render("by "+b.Author))
	}
}
