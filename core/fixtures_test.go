package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/iocache"
	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/mock"
)

func at(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

// fixtureDataset holds two valid orders and one canceled order.
// Order o1 is the worked example: price 100, freight 15, review 1.
func fixtureDataset() schema.Dataset {
	return schema.Dataset{
		Orders: []schema.Order{
			{OrderID: "o1", CustomerID: "c1", Status: "delivered", PurchasedAt: at("2018-01-10"), DeliveredAt: at("2018-01-18")},
			{OrderID: "o2", CustomerID: "c2", Status: "delivered", PurchasedAt: at("2018-03-10"), DeliveredAt: at("2018-03-14")},
			{OrderID: "o3", CustomerID: "c1", Status: "canceled", PurchasedAt: at("2018-02-01")},
		},
		Items: []schema.OrderItem{
			{OrderID: "o1", ItemSeq: 1, ProductID: "p1", SellerID: "s1", Price: 100, Freight: 15},
			{OrderID: "o2", ItemSeq: 1, ProductID: "p2", SellerID: "s2", Price: 40, Freight: 10},
			{OrderID: "o3", ItemSeq: 1, ProductID: "p2", SellerID: "s2", Price: 40, Freight: 10},
		},
		Products: []schema.Product{
			{ProductID: "p1", Category: "brinquedos"},
			{ProductID: "p2", Category: "pcs"},
		},
		Translations: []schema.CategoryTranslation{
			{Category: "brinquedos", CategoryEnglish: "toys"},
		},
		Customers: []schema.Customer{
			{CustomerID: "c1", UniqueID: "u1", State: "SP"},
			{CustomerID: "c2", UniqueID: "u2", State: "RJ"},
		},
		Sellers: []schema.Seller{
			{SellerID: "s1", State: "SP"},
			{SellerID: "s2", State: "SP"},
		},
		Payments: []schema.Payment{
			{OrderID: "o1", Seq: 1, Type: "credit_card", Installments: 2, Value: 115},
			{OrderID: "o2", Seq: 1, Type: "boleto", Installments: 1, Value: 50},
			{OrderID: "o3", Seq: 1, Type: "boleto", Installments: 1, Value: 50},
		},
		Reviews: []schema.Review{
			{ReviewID: "r1", OrderID: "o1", Score: 1},
			{ReviewID: "r2", OrderID: "o2", Score: 5},
		},
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Source:       schema.CSVSource,
		SourcePath:   "testdata",
		Policy:       schema.DefaultPolicy(),
		GroupBy:      schema.BySeller,
		ResultLimit:  contract.DefaultResultLimit,
		Output:       schema.TextOut,
		CacheBackend: schema.NoneBackend,
		RunsBackend:  schema.NoneBackend,
	}
}

// fixtureSource returns a mock source that serves fixtureDataset.
func fixtureSource() *iocache.MockSource {
	src := &iocache.MockSource{}
	src.On("Load", mock.Anything).Return(fixtureDataset(), nil)
	src.On("Fingerprint", mock.Anything).Return("fp-1", nil)
	src.On("Describe").Return("fixture").Maybe()
	src.On("Close").Return(nil).Maybe()
	return src
}

// noStores returns a manager without snapshot or run stores.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSnapshotStore").Return(nil).Maybe()
	mgr.On("GetRunStore").Return(nil).Maybe()
	return mgr
}

// useSource swaps the source factory for the duration of the test.
func useSource(t *testing.T, src contract.Source) {
	t.Helper()
	prev := newSource
	newSource = func(*contract.Config) (contract.Source, error) { return src, nil }
	t.Cleanup(func() { newSource = prev })
}

// useWriter swaps the writer factory for the duration of the test.
func useWriter(t *testing.T, w contract.ReportWriter) {
	t.Helper()
	prev := newWriter
	newWriter = func() contract.ReportWriter { return w }
	t.Cleanup(func() { newWriter = prev })
}

func quietContext() context.Context {
	return WithSuppressHeader(context.Background())
}
