package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"combitest/internal/domain"
	"combitest/internal/storage"
)

// Viewer displays saved run output in an interactive TUI
type Viewer interface {
	View(output *storage.Output) error
}

// FailureViewer lists failing combinations next to their details and lets
// the user mark them resolved.
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays the failures of output in an interactive TUI
func (fv *FailureViewer) View(output *storage.Output) error {
	failures := output.Failures
	if len(failures) == 0 {
		color.Green("✓ No failing combinations found!")
		return nil
	}

	byKey := make(map[string]domain.TestResult, len(output.Results))
	for _, r := range output.Results {
		if r.Status.IsFailure() {
			byKey[r.Combination.Key()] = r
		}
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, listItemText(failures[index], index), "")
	}

	for i := range failures {
		list.AddItem(listItemText(failures[i], i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(output.Meta, failures))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		f := failures[index]
		var result *domain.TestResult
		if r, ok := byKey[f.Combination]; ok {
			result = &r
		}
		statsView.SetText(formatFailureStats(f, index+1))
		detailsView.SetText(formatFailureDetails(f, result))
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					failures[index].Resolved = !failures[index].Resolved
					updateListItem(index)
					updateHeader()
					updateDetails()
					saveErr = fv.storage.SaveOutput(output)
				}
				return nil
			}
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("save resolved status: %w", saveErr)
	}
	return nil
}

func countUnresolved(failures []domain.Failure) int {
	n := 0
	for _, f := range failures {
		if !f.Resolved {
			n++
		}
	}
	return n
}

func headerText(meta domain.RunMeta, failures []domain.Failure) string {
	return fmt.Sprintf(" %s: %d failing (%d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, q quit ",
		meta.SuiteName, len(failures), countUnresolved(failures))
}

// listItemText uses tview color tags.
func listItemText(f domain.Failure, index int) string {
	label := strings.ReplaceAll(f.Combination, "|", " + ")
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, label)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, label)
}

func formatFailureStats(f domain.Failure, number int) string {
	tag := "red"
	if f.Status == domain.StatusError {
		tag = "fuchsia"
	}
	state := "open"
	if f.Resolved {
		state = "resolved"
	}
	return fmt.Sprintf("[cyan]#%d[white] [%s]%s[white] | worker %d | %s\n",
		number, tag, strings.ToUpper(f.Status.String()), f.Worker, state)
}

// formatFailureDetails renders one failure; result may be nil when the
// output has no matching record.
func formatFailureDetails(f domain.Failure, result *domain.TestResult) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ %s[white]\n\n", strings.ToUpper(f.Status.String()))

	fmt.Fprintf(w, "[yellow]Combination:[white]\n")
	if comb, ok := domain.ParseKey(f.Combination); ok {
		for _, p := range comb.Pairs() {
			fmt.Fprintf(w, "  [cyan]%s[white]\t%s\n", p.Dimension, p.Value)
		}
	} else {
		fmt.Fprintf(w, "  %s\n", f.Combination)
	}
	fmt.Fprintf(w, "\n")

	if result != nil {
		fmt.Fprintf(w, "[yellow]Duration:[white] %s\n", result.Duration)
		if !result.StartedAt.IsZero() {
			fmt.Fprintf(w, "[yellow]Started:[white] %s\n", result.StartedAt.Format("15:04:05.000"))
		}
		fmt.Fprintf(w, "\n")
	}

	if f.Detail != "" {
		fmt.Fprintf(w, "[yellow]Error Detail:[white]\n%s\n", tview.Escape(f.Detail))
	}

	w.Flush()
	return builder.String()
}
