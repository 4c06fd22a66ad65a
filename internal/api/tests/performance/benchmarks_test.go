package performance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaredmoss/exchange-core/internal/api/tests/testutils"
)

// BenchmarkOrderSubmissionThroughput measures orders per second through
// the full HTTP -> dispatch -> exchange -> buffer path (buffer drains
// go to the fake store, whose batch writes are no-ops).
func BenchmarkOrderSubmissionThroughput(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	resp := ts.Post("/api/v1/accounts", testutils.NewAccountRequest("trader", "hunter2"))
	require.Equal(b, 200, resp.StatusCode)
	resp.Body.Close()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		order := testutils.NewLimitBuyOrder("trader", "hunter2", "AAPL", 100.0+float64(i%100)*0.01, 10)
		resp := ts.Post("/api/v1/orders", order)
		require.Equal(b, 200, resp.StatusCode)
		resp.Body.Close()
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "orders/sec")
}

// BenchmarkCrossingOrderExecution measures throughput when every
// incoming order matches a resting order on the opposite side.
func BenchmarkCrossingOrderExecution(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	resp := ts.Post("/api/v1/accounts", testutils.NewAccountRequest("maker", "hunter2"))
	require.Equal(b, 200, resp.StatusCode)
	resp.Body.Close()
	resp = ts.Post("/api/v1/accounts", testutils.NewAccountRequest("taker", "swordfish"))
	require.Equal(b, 200, resp.StatusCode)
	resp.Body.Close()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sell := ts.Post("/api/v1/orders", testutils.NewLimitSellOrder("maker", "hunter2", "AAPL", 100.0, 10))
		sell.Body.Close()
		buy := ts.Post("/api/v1/orders", testutils.NewLimitBuyOrder("taker", "swordfish", "AAPL", 100.0, 10))
		buy.Body.Close()
	}

	b.ReportMetric(float64(2*b.N)/b.Elapsed().Seconds(), "orders/sec")
}
