package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
)

const airtablePageSize = 100

// AirtableBackfillService imports the legacy Airtable earnings tables into the ledger.
// Rows already in the ledger are left untouched.
type AirtableBackfillService struct {
	Base
	airtable integration.AirtableClient
	ledger   earnings.LedgerRepository
	tables   []earnings.BackfillTable
	pace     time.Duration
}

// NewAirtableBackfillService creates a new AirtableBackfillService.
// pace spaces page requests; zero means the default of 200ms.
func NewAirtableBackfillService(airtable integration.AirtableClient, ledger earnings.LedgerRepository, pace time.Duration, opts ...Option) *AirtableBackfillService {
	if pace <= 0 {
		pace = defaultBackfillPace
	}
	return &AirtableBackfillService{
		Base:     newBase(opts),
		airtable: airtable,
		ledger:   ledger,
		tables:   earnings.BackfillTables,
		pace:     pace,
	}
}

// Run imports every table. A failing page stops its table; the others still run.
func (s *AirtableBackfillService) Run(ctx context.Context) (*RunReport, error) {
	r := s.start(ctx, JobAirtableBackfill)
	limiter := rate.NewLimiter(rate.Every(s.pace), 1)

	for _, t := range s.tables {
		res, err := s.importTable(r, limiter, t)
		if err != nil {
			return r.finish(err)
		}
		r.add(res)
	}
	return r.finish(nil)
}

// importTable returns an error only when the run itself is cancelled
func (s *AirtableBackfillService) importTable(r *run, limiter *rate.Limiter, t earnings.BackfillTable) (CreatorResult, error) {
	var (
		imported int
		invalid  int
		offset   string
	)
	result := func(status string, err error) CreatorResult {
		res := CreatorResult{
			Table:  t.Name,
			Status: status,
			Counts: map[string]int{"imported": imported, "errors": invalid},
		}
		if err != nil {
			res.Error = err.Error()
		}
		return res
	}

	for {
		if err := limiter.Wait(r.ctx); err != nil {
			return CreatorResult{}, err
		}
		page, err := s.airtable.ListPage(r.ctx, t.Name, integration.AirtableListOptions{
			PageSize: airtablePageSize,
			Offset:   offset,
		})
		if err != nil {
			return result(StatusError, fmt.Errorf("failed to read %s: %w", t.Name, err)), nil
		}
		r.archive(r.ctx, t.Platform.String(), "", page.Records)

		now := s.now()
		records := make([]earnings.Record, 0, len(page.Records))
		for _, row := range page.Records {
			rec := earnings.AirtableBackfillRecord(t.Platform, row.Fields, now)
			if err := rec.Validate(); err != nil {
				invalid++
				r.log.Debug("Skipping invalid backfill row",
					zap.String("table", t.Name),
					zap.String("record_id", row.ID),
					zap.Error(err))
				continue
			}
			records = append(records, rec)
		}

		inserted, err := s.ledger.Upsert(r.ctx, records, earnings.ConflictIgnore)
		if err != nil {
			return result(StatusError, err), nil
		}
		imported += int(inserted)

		if page.Offset == "" {
			return result(StatusOK, nil), nil
		}
		offset = page.Offset
	}
}
