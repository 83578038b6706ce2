package archive

import (
	"context"
	"testing"
	"time"

	"minerva-archive/lib/scrapers/minerva"
	"minerva-archive/lib/testutil"
	"minerva-archive/services/archive/db"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "archive",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(res.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	id, err := store.SaveCapture(ctx, Capture{
		Years:        "2021",
		RowIndex:     1,
		RequestDate:  "10/05/2021",
		StartDate:    "09/15/2021",
		ReferenceNum: "ER012345",
		QueueTitle:   "FIN Approval Queue",
		PdfPath:      "pdf_output/2021_001_ER012345.pdf",
		TxtPath:      "pdf_output/2021_001_ER012345.txt",
		Sections: []minerva.Section{
			{Label: "Payment Information", Content: "Direct Deposit"},
			{Label: "Summary of Expenses", Content: "two line items"},
		},
		Items: []minerva.LineItem{
			{
				Order:            1,
				Kind:             minerva.LINE_KIND_ITEM,
				ItemNo:           "1",
				TransDate:        "09/15/2021",
				Description:      "Hotel",
				TransAmount:      "240.00",
				AllowableExpense: "240.00",
				Currency:         "CAD",
				ExchRate:         "1.0",
				CadAmount:        "240.00",
				Label:            "Summary of Expenses",
			},
			{
				Order:     3,
				Kind:      minerva.LINE_KIND_TOTAL,
				ItemNo:    "Total",
				CadAmount: "240.00",
				Label:     "Summary of Expenses",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Greater(t, id, int64(0))

	captures, err := store.ListCaptures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, captures, 1)
	require.Equal(t, id, captures[0].ID)
	require.Equal(t, "2021", captures[0].Years)
	require.Equal(t, int64(1), captures[0].RowIndex)
	require.Equal(t, "ER012345", captures[0].ReferenceNum)
	require.Equal(t, "FIN Approval Queue", captures[0].QueueTitle)
	require.NotEmpty(t, captures[0].CreatedAt)

	got, err := store.qry.GetRequest(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, captures[0], got)

	sections, err := store.Sections(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff(
		[]db.Section{
			{RequestID: id, SectionName: "Payment Information", Content: "Direct Deposit"},
			{RequestID: id, SectionName: "Summary of Expenses", Content: "two line items"},
		},
		sections,
		cmpopts.IgnoreFields(db.Section{}, "ID"),
	)
	if diff != "" {
		t.Fatal(diff)
	}

	items, err := store.SummaryItems(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, items, 2)
	require.Equal(t, "item", items[0].RowType)
	require.Equal(t, int64(1), items[0].RowOrder)
	require.Equal(t, "Hotel", items[0].Description)
	require.Equal(t, "", items[0].NonMcExpense)
	require.Equal(t, "240.00", items[0].CadAmount)
	require.Equal(t, "total", items[1].RowType)
	require.Equal(t, "Total", items[1].ItemNo)
	require.Equal(t, int64(3), items[1].RowOrder)
}

func TestStoreEmptyCapture(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "archive",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(res.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	first, err := store.SaveCapture(ctx, Capture{Years: "2020", RowIndex: 1})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.SaveCapture(ctx, Capture{Years: "2020", RowIndex: 2})
	if err != nil {
		t.Fatal(err)
	}
	require.Greater(t, second, first)

	sections, err := store.Sections(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, sections)

	items, err := store.SummaryItems(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, items)
}
