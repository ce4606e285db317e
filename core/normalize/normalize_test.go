package normalize

import (
	"testing"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

func defaultPolicy() schema.NormalizePolicy {
	return schema.DefaultPolicy().Normalize
}

func TestNormalizeOrders(t *testing.T) {
	raw := schema.Dataset{Orders: []schema.Order{
		{OrderID: "o1", CustomerID: "c1", Status: "delivered", PurchasedAt: ts("2018-01-02")},
		{OrderID: "o2", CustomerID: "c1", Status: "canceled", PurchasedAt: ts("2018-01-02")},
		{OrderID: "o3", CustomerID: "c1", Status: "UNAVAILABLE", PurchasedAt: ts("2018-01-02")},
		{OrderID: "o4", CustomerID: "c1", Status: "", PurchasedAt: ts("2018-01-02")},
		{OrderID: "o5", CustomerID: "c1", Status: "shipped"},
		{OrderID: "o6", CustomerID: "c1", Status: "shipped", PurchasedAt: ts("2018-01-03")},
	}}

	out, stats := Normalize(raw, defaultPolicy())

	require.Len(t, out.Orders, 2)
	assert.Equal(t, "o1", out.Orders[0].OrderID)
	assert.Equal(t, "o6", out.Orders[1].OrderID)
	assert.Equal(t, OrdersTable, stats[0].Table)
	assert.Equal(t, 6, stats[0].Read)
	assert.Equal(t, 4, stats[0].Rejected())
}

func TestNormalizeCustomRejectSet(t *testing.T) {
	raw := schema.Dataset{Orders: []schema.Order{
		{OrderID: "o1", CustomerID: "c1", Status: "canceled", PurchasedAt: ts("2018-01-02")},
		{OrderID: "o2", CustomerID: "c1", Status: "created", PurchasedAt: ts("2018-01-02")},
	}}

	out, _ := Normalize(raw, schema.NormalizePolicy{RejectStatuses: []string{" Created "}})

	require.Len(t, out.Orders, 1)
	assert.Equal(t, "o1", out.Orders[0].OrderID)
}

func TestNormalizeRowRules(t *testing.T) {
	tests := []struct {
		name string
		raw  schema.Dataset
		kept func(schema.Dataset) int
		want int
	}{
		{
			name: "items reject non-positive price, negative freight and missing product",
			raw: schema.Dataset{Items: []schema.OrderItem{
				{OrderID: "o1", ItemSeq: 1, ProductID: "p1", Price: 10, Freight: 0},
				{OrderID: "o1", ItemSeq: 2, ProductID: "p1", Price: 0, Freight: 1},
				{OrderID: "o1", ItemSeq: 3, ProductID: "p1", Price: -5, Freight: 1},
				{OrderID: "o1", ItemSeq: 4, ProductID: "p1", Price: 10, Freight: -0.01},
				{OrderID: "o1", ItemSeq: 5, ProductID: "", Price: 10, Freight: 1},
			}},
			kept: func(d schema.Dataset) int { return len(d.Items) },
			want: 1,
		},
		{
			name: "products reject missing category",
			raw: schema.Dataset{Products: []schema.Product{
				{ProductID: "p1", Category: "beleza_saude"},
				{ProductID: "p2", Category: ""},
			}},
			kept: func(d schema.Dataset) int { return len(d.Products) },
			want: 1,
		},
		{
			name: "payments reject non-positive value or installments",
			raw: schema.Dataset{Payments: []schema.Payment{
				{OrderID: "o1", Seq: 1, Value: 10, Installments: 1},
				{OrderID: "o1", Seq: 2, Value: 0, Installments: 1},
				{OrderID: "o1", Seq: 3, Value: 10, Installments: 0},
			}},
			kept: func(d schema.Dataset) int { return len(d.Payments) },
			want: 1,
		},
		{
			name: "reviews reject scores outside 1 to 5",
			raw: schema.Dataset{Reviews: []schema.Review{
				{OrderID: "o1", Score: 0},
				{OrderID: "o1", Score: 1},
				{OrderID: "o1", Score: 5},
				{OrderID: "o1", Score: 6},
			}},
			kept: func(d schema.Dataset) int { return len(d.Reviews) },
			want: 2,
		},
		{
			name: "customers dedupe by id and reject missing state",
			raw: schema.Dataset{Customers: []schema.Customer{
				{CustomerID: "c1", State: "SP"},
				{CustomerID: "c1", State: "RJ"},
				{CustomerID: "c2", State: ""},
				{CustomerID: "c3", State: "MG"},
			}},
			kept: func(d schema.Dataset) int { return len(d.Customers) },
			want: 2,
		},
		{
			name: "sellers dedupe by id",
			raw: schema.Dataset{Sellers: []schema.Seller{
				{SellerID: "s1", State: "SP"},
				{SellerID: "s1", State: "SP"},
				{SellerID: "s2"},
			}},
			kept: func(d schema.Dataset) int { return len(d.Sellers) },
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := Normalize(tt.raw, defaultPolicy())
			assert.Equal(t, tt.want, tt.kept(out))
		})
	}
}

func TestNormalizeCustomerDedupeKeepsFirst(t *testing.T) {
	raw := schema.Dataset{Customers: []schema.Customer{
		{CustomerID: "c1", State: "SP", City: "sao paulo"},
		{CustomerID: "c1", State: "RJ", City: "rio de janeiro"},
	}}

	out, stats := Normalize(raw, defaultPolicy())

	require.Len(t, out.Customers, 1)
	assert.Equal(t, "SP", out.Customers[0].State)
	assert.Equal(t, 1, stats.TotalRejected())
}

func TestNormalizeEmpty(t *testing.T) {
	out, stats := Normalize(schema.Dataset{}, defaultPolicy())
	assert.Empty(t, out.Orders)
	assert.Len(t, stats, 8)
	assert.Equal(t, 0, stats.TotalRejected())
}
