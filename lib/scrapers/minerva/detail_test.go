package minerva

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const detailFixture = `<html><body>
<span class="pagetitle">Request for Expense Reimbursement</span>
<div class="pagebody">
	<strong>Payment Information</strong>
	<table>
		<tr><th>Payment Method</th><th>Status</th></tr>
		<tr><td>Direct Deposit</td><td>Completed</td></tr>
	</table>
	<table>
		<caption>Summary of Expenses</caption>
		<tr><th>Item #</th><th>Trans. Date</th><th>Description</th><th>Trans. Amount $</th><th>Non-McGill Expense</th><th>Allowable Expenses</th><th>Curr.</th><th>Exch. Rate</th><th>Expenses CAD $</th></tr>
		<tr><td>1</td><td>09/15/2021</td><td>Taxi airport</td><td>45.00</td><td>0.00</td><td>45.00</td><td>CAD</td><td>1.000000</td><td>45.00</td></tr>
		<tr><td>2</td><td>09/16/2021</td><td>Hotel conference</td><td>320.50</td><td>0.00</td><td>320.50</td><td>CAD</td><td>1.000000</td><td>320.50</td></tr>
		<tr><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
		<tr><td>Total</td><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td>365.50</td></tr>
		<tr><td>Grand Total Due to Claimant</td><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td>365.50</td></tr>
	</table>
	<strong>Session Links</strong>
	<table>
		<tr><td>Return to menu</td></tr>
	</table>
</div>
</body></html>`

func TestExtractSections(t *testing.T) {
	sections := ExtractSections(detailFixture)
	require.Len(t, sections, 2)

	require.Equal(t, "Payment Information", sections[0].Label)
	require.Contains(t, sections[0].Content, "Direct Deposit")
	require.Contains(t, sections[0].Content, "Completed")

	require.Equal(t, "Summary of Expenses", sections[1].Label)
	require.Contains(t, sections[1].Content, "Hotel conference")
	require.Contains(t, sections[1].Content, "365.50")
}

func TestExtractSectionsScopedToHeading(t *testing.T) {
	content := `<html><body>
	<table><tr><td>outside table</td></tr></table>
	<div>
		Request for Expense Reimbursement
		<table><tr><td>inside table</td></tr></table>
	</div>
	</body></html>`

	sections := ExtractSections(content)
	require.Len(t, sections, 1)
	require.Contains(t, sections[0].Content, "inside table")
	require.NotContains(t, sections[0].Content, "outside table")
}

func TestExtractSectionsHeadingLabel(t *testing.T) {
	content := `<html><body>
	<h2>FOAPAL Distribution</h2>
	<div><table>
		<tr><td>123456</td><td>ACCT</td></tr>
	</table></div>
	</body></html>`

	sections := ExtractSections(content)
	require.Len(t, sections, 1)
	require.Equal(t, "FOAPAL Distribution", sections[0].Label)
}

func TestExtractSectionsEmptyTable(t *testing.T) {
	content := `<html><body>
	<strong>Payment Information</strong>
	<table></table>
	</body></html>`

	sections := ExtractSections(content)
	require.Len(t, sections, 1)
	require.Equal(t, "(table empty)", sections[0].Content)
}

func TestExtractSectionsNoTables(t *testing.T) {
	sections := ExtractSections(`<html><body><p>Please wait...</p></body></html>`)
	require.Len(t, sections, 1)
	require.Equal(t, "(no tables found)", sections[0].Label)
	require.Equal(t, "", sections[0].Content)

	require.Equal(t, "(no tables found)\n", FormatSections(sections))
}

func TestExtractLineItems(t *testing.T) {
	items := ExtractLineItems(detailFixture)
	require.Len(t, items, 4)

	require.Equal(t, LineItem{
		Order:            1,
		Kind:             LINE_KIND_ITEM,
		ItemNo:           "1",
		TransDate:        "09/15/2021",
		Description:      "Taxi airport",
		TransAmount:      "45.00",
		NonMcExpense:     "0.00",
		AllowableExpense: "45.00",
		Currency:         "CAD",
		ExchRate:         "1.000000",
		CadAmount:        "45.00",
		Label:            "Summary of Expenses",
	}, items[0])

	require.Equal(t, "Hotel conference", items[1].Description)
	require.Equal(t, 2, items[1].Order)

	require.Equal(t, LINE_KIND_TOTAL, items[2].Kind)
	require.Equal(t, 4, items[2].Order)
	require.Equal(t, "365.50", items[2].CadAmount)

	require.Equal(t, LINE_KIND_TOTAL, items[3].Kind)
	require.Equal(t, "Grand Total Due to Claimant", items[3].ItemNo)
}

func TestExtractLineItemsPositionalFallback(t *testing.T) {
	content := `<html><body>
	<b>Summary of Expenses</b>
	<table>
		<tr><td>1</td><td>09/15/2021</td><td>Taxi</td><td>45.00</td><td>0.00</td></tr>
	</table>
	</body></html>`

	items := ExtractLineItems(content)
	require.Len(t, items, 1)
	require.Equal(t, LineItem{
		Order:        0,
		Kind:         LINE_KIND_ITEM,
		ItemNo:       "1",
		TransDate:    "09/15/2021",
		Description:  "Taxi",
		TransAmount:  "45.00",
		NonMcExpense: "0.00",
		Label:        "Summary of Expenses",
	}, items[0])
}

func TestExtractLineItemsIgnoresUnrelatedTables(t *testing.T) {
	content := `<html><body>
	<strong>Payment Information</strong>
	<table><tr><td>Direct Deposit</td></tr></table>
	</body></html>`

	require.Empty(t, ExtractLineItems(content))
}

func TestFormatSections(t *testing.T) {
	out := FormatSections([]Section{
		{Label: "Payment Information", Content: "A | B"},
		{Label: "FOAPAL Distribution", Content: "C"},
	})
	require.Equal(t, "=== Payment Information ===\nA | B\n\n=== FOAPAL Distribution ===\nC\n", out)
}
