package archive

import (
	"context"
	"database/sql"

	"minerva-archive/lib/scrapers/minerva"
	"minerva-archive/services/archive/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Capture is everything worth keeping about one archived request: the list
// row it came from, where the rendered files ended up, and the structured
// content pulled out of the detail page.
type Capture struct {
	Years        string
	RowIndex     int
	RequestDate  string
	StartDate    string
	ReferenceNum string
	QueueTitle   string
	PdfPath      string
	TxtPath      string
	Sections     []minerva.Section
	Items        []minerva.LineItem
}

// SaveCapture writes a capture and its sections and summary items in one
// transaction and returns the new request id.
func (s Store) SaveCapture(ctx context.Context, capture Capture) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	requestId, err := txqry.CreateRequest(ctx, db.CreateRequestParams{
		Years:        capture.Years,
		RowIndex:     int64(capture.RowIndex),
		RequestDate:  capture.RequestDate,
		StartDate:    capture.StartDate,
		ReferenceNum: capture.ReferenceNum,
		QueueTitle:   capture.QueueTitle,
		PdfPath:      capture.PdfPath,
		TxtPath:      capture.TxtPath,
	})
	if err != nil {
		return 0, err
	}

	for _, section := range capture.Sections {
		err := txqry.CreateSection(ctx, db.CreateSectionParams{
			RequestID:   requestId,
			SectionName: section.Label,
			Content:     section.Content,
		})
		if err != nil {
			return 0, err
		}
	}
	for _, item := range capture.Items {
		err := txqry.CreateSummaryItem(ctx, db.CreateSummaryItemParams{
			RequestID:        requestId,
			RowOrder:         int64(item.Order),
			RowType:          item.Kind,
			ItemNo:           item.ItemNo,
			TransDate:        item.TransDate,
			Description:      item.Description,
			TransAmount:      item.TransAmount,
			NonMcExpense:     item.NonMcExpense,
			AllowableExpense: item.AllowableExpense,
			Currency:         item.Currency,
			ExchRate:         item.ExchRate,
			CadAmount:        item.CadAmount,
			Label:            item.Label,
		})
		if err != nil {
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return requestId, nil
}

func (s Store) ListCaptures(ctx context.Context) ([]db.Request, error) {
	return s.qry.ListRequests(ctx)
}

func (s Store) Sections(ctx context.Context, requestId int64) ([]db.Section, error) {
	return s.qry.ListSections(ctx, requestId)
}

func (s Store) SummaryItems(ctx context.Context, requestId int64) ([]db.SummaryItem, error) {
	return s.qry.ListSummaryItems(ctx, requestId)
}
