package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/fraud-desk/internal/model"
)

// StatusStyle picks the style a case status is rendered with.
func StatusStyle(status model.CaseStatus) lipgloss.Style {
	switch status {
	case model.StatusPendingReview:
		return WarningStyle
	case model.StatusConfirmedFraud, model.StatusVerificationFailed:
		return ErrorStyle
	case model.StatusNotFraud:
		return SuccessStyle
	default:
		return SubtleStyle
	}
}

// RenderCaseTable renders cases as a bordered table, one row per case.
func RenderCaseTable(cases []model.FraudCase) string {
	if len(cases) == 0 {
		return SubtleStyle.Render("(No fraud cases)")
	}

	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ID),
			c.UserName,
			"•••• " + c.CardEnding,
			fmt.Sprintf("$%.2f", c.TransactionAmount),
			c.TransactionCategory,
			string(c.Status),
			c.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	statusCol := 5
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "User", "Card", "Amount", "Category", "Status", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == statusCol && row >= 0 && row < len(cases) {
				return StatusStyle(cases[row].Status).PaddingRight(2)
			}
			return TableCellStyle
		})

	return t.Render()
}

// RenderCaseDetail renders every field of a single case in a box.
// The security answer is never shown.
func RenderCaseDetail(c *model.FraudCase) string {
	var b strings.Builder

	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render(fmt.Sprintf("%-13s", label+":")), value)
	}

	line("Case", fmt.Sprintf("#%d", c.ID))
	line("Customer", c.UserName)
	line("Card", "•••• "+c.CardEnding)
	line("Status", StatusStyle(c.Status).Render(string(c.Status)))
	line("Transaction", c.TransactionName)
	line("Amount", fmt.Sprintf("$%.2f", c.TransactionAmount))
	line("Time", c.TransactionTime)
	line("Category", c.TransactionCategory)
	line("Source", c.TransactionSource)
	line("Location", c.TransactionLocation)
	line("Question", c.SecurityQuestion)
	if c.OutcomeNote != nil {
		line("Outcome", *c.OutcomeNote)
	}
	line("Updated", c.UpdatedAt.Format("2006-01-02 15:04:05"))

	return RenderBox("Fraud case", strings.TrimRight(b.String(), "\n"))
}
