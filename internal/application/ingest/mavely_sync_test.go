package ingest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/integration"
)

func mirrorRow(creatorID, start, end string, amount float64) integration.AirtableRecord {
	return integration.AirtableRecord{Fields: earnings.Fields{
		"Creator ID":          creatorID,
		"Period Start":        start,
		"Period End":          end,
		"Normalized Earnings": amount,
	}}
}

func TestMavelyMirror_Run(t *testing.T) {
	airtable := new(MockAirtableClient)
	creators := new(MockCreatorRepository)
	ledger := new(MockLedgerRepository)
	archiver := &recordingArchiver{}
	svc := NewMavelyMirrorService(airtable, "tblMirror", map[string]string{"MAP-1": "mapped_creator"},
		creators, ledger, WithClock(fixedClock), WithArchiver(archiver))

	creators.On("ListOwned", mock.Anything).Return([]creator.Creator{
		{ID: "nicki_entenmann", MavelyCreatorID: "mv-nicki", IsOwned: true},
		{ID: "emily", MavelyCreatorID: "mv-emily", IsOwned: true},
	}, nil)
	airtable.On("ListRecords", mock.Anything, "tblMirror", integration.AirtableListOptions{
		SortField: "Recorded At",
		SortDesc:  true,
	}).Return([]integration.AirtableRecord{
		mirrorRow("MV-EMILY", "2025-03-01", "2025-03-03", 30),
		mirrorRow("mv-emily", "2025-03-01", "2025-03-03", 10), // older duplicate
		mirrorRow("map-1", "2025-02-01", "2025-02-28", 5),
		mirrorRow("unknown", "2025-02-01", "2025-02-28", 7),
		mirrorRow("mv-nicki", "2024-01-01", "2024-01-31", 99), // before the cutoff
		{Fields: earnings.Fields{"Creator ID": "mv-nicki"}},
	}, nil)

	var written []earnings.Record
	ledger.On("Upsert", mock.Anything, mock.Anything, earnings.ConflictIgnore).
		Run(func(args mock.Arguments) { written = args.Get(1).([]earnings.Record) }).
		Return(int64(2), nil)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, written, 3)
	assert.Equal(t, "emily", written[0].CreatorID)
	assert.True(t, decimal.NewFromInt(30).Equal(written[0].Revenue), "newest row wins")
	assert.Equal(t, "mapped_creator", written[1].CreatorID)
	assert.Equal(t, "nicki_entenmann", written[2].CreatorID, "unknown ids fall back to the first owned creator")

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.Equal(t, "tblMirror", res.Table)
	assert.Equal(t, 2, res.Counts["inserted"])
	assert.Equal(t, 4, res.Counts["skipped"], "duplicate, cutoff, incomplete and one conflict")
	assert.Equal(t, []string{"mavely"}, archiver.platforms())
}

type mavelyFixture struct {
	client      *MockMavelyClient
	creators    *MockCreatorRepository
	mavely      *MockMavelyRepository
	products    *MockProductRepository
	connections *MockConnectionRepository
}

func newMavelyFixture() *mavelyFixture {
	return &mavelyFixture{
		client:      new(MockMavelyClient),
		creators:    new(MockCreatorRepository),
		mavely:      new(MockMavelyRepository),
		products:    new(MockProductRepository),
		connections: new(MockConnectionRepository),
	}
}

func (f *mavelyFixture) service(creds MavelyCredentials) *MavelyGraphQLService {
	return NewMavelyGraphQLService(f.client, creds, 0, MavelyRepositories{
		Creators:    f.creators,
		Mavely:      f.mavely,
		Products:    f.products,
		Connections: f.connections,
	}, WithClock(fixedClock))
}

func TestMavelyGraphQL_Run(t *testing.T) {
	f := newMavelyFixture()
	svc := f.service(MavelyCredentials{Email: "e@example.com", Password: "pw"})
	period := earnings.TrailingPeriod(testNow, 90)

	f.creators.On("ListOwned", mock.Anything).Return([]creator.Creator{
		{ID: "nicki_entenmann", MavelyCreatorID: "mv-nicki", IsOwned: true},
	}, nil)
	f.client.On("Token", mock.Anything, "e@example.com", "pw").Return("tok", nil)
	f.client.On("LinkMetrics", mock.Anything, "tok", period).Return([]earnings.MavelyLink{
		{LinkID: "l1", Title: "Linen Shirt", Clicks: 10, Orders: 1, Revenue: decimal.NewFromInt(80)},
		{LinkID: "l2"},
	}, nil)
	f.client.On("Transactions", mock.Anything, "tok", period).Return([]earnings.MavelyTransaction{
		{TransactionID: "t1"}, {TransactionID: "t2"},
	}, nil)
	f.mavely.On("UpsertLinks", mock.Anything, mock.MatchedBy(func(l []earnings.MavelyLink) bool {
		return len(l) == 2 && l[0].CreatorID == "nicki_entenmann" && l[1].Period == period
	})).Return(nil)
	f.products.On("Upsert", mock.Anything, mock.MatchedBy(func(p []earnings.Product) bool {
		return len(p) == 1 && p[0].ProductName == "Linen Shirt"
	})).Return(nil)
	f.mavely.On("InsertTransactions", mock.Anything, mock.MatchedBy(func(tx []earnings.MavelyTransaction) bool {
		return len(tx) == 2 && tx[1].CreatorID == "nicki_entenmann"
	})).Return(int64(1), int64(1), nil)
	f.connections.On("Touch", mock.Anything, mock.MatchedBy(func(c earnings.Connection) bool {
		return c.Platform == earnings.PlatformMavely && c.ExternalID == "mv-nicki"
	})).Return(nil)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, period.String(), rep.Period)
	assert.Equal(t, 1, rep.Synced)
	assert.Equal(t, 2, rep.Count("linksUpserted"))
	assert.Equal(t, 1, rep.Count("productsUpserted"))
	assert.Equal(t, 1, rep.Count("txInserted"))
	assert.Equal(t, 1, rep.Count("txSkipped"))
	f.connections.AssertExpectations(t)
}

func TestMavelyGraphQL_JobLevelFailures(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		f := newMavelyFixture()
		_, err := f.service(MavelyCredentials{Email: "e@example.com"}).Run(context.Background())
		assert.ErrorIs(t, err, integration.ErrCredentialsMissing)
	})

	t.Run("no owned creators", func(t *testing.T) {
		f := newMavelyFixture()
		f.creators.On("ListOwned", mock.Anything).Return([]creator.Creator{}, nil)
		_, err := f.service(MavelyCredentials{Email: "e", Password: "p"}).Run(context.Background())
		assert.ErrorIs(t, err, ErrNoOwnedCreators)
		f.client.AssertNotCalled(t, "Token", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("login failure", func(t *testing.T) {
		f := newMavelyFixture()
		f.creators.On("ListOwned", mock.Anything).Return([]creator.Creator{{ID: "a", IsOwned: true}}, nil)
		f.client.On("Token", mock.Anything, "e", "p").Return("", integration.ErrSessionTokenMissing)
		rep, err := f.service(MavelyCredentials{Email: "e", Password: "p"}).Run(context.Background())
		assert.ErrorIs(t, err, integration.ErrSessionTokenMissing)
		assert.Empty(t, rep.Results)
	})
}
