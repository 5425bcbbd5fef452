package metrics

import (
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics(t *testing.T) {
	m := PrometheusMetrics{}

	before := testutil.ToFloat64(RPCRequests.WithLabelValues("flights", "not_found"))
	m.ObserveCall("flights", rpc.KindNotFound, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(RPCRequests.WithLabelValues("flights", "not_found")))

	before = testutil.ToFloat64(RPCReauthentications.WithLabelValues("users"))
	m.ObserveReauthentication("users")
	assert.Equal(t, before+1, testutil.ToFloat64(RPCReauthentications.WithLabelValues("users")))

	before = testutil.ToFloat64(BookingSagas.WithLabelValues("ok"))
	m.ObserveSaga("ok", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(BookingSagas.WithLabelValues("ok")))
}
