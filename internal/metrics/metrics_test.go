package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
	assert.Same(t, Initialize(), Get())
}

func TestEngagementCounter(t *testing.T) {
	m := Get()
	before := testutil.ToFloat64(m.EngagementActionsTotal.WithLabelValues("support", "applied"))

	m.EngagementActionsTotal.WithLabelValues("support", "applied").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(m.EngagementActionsTotal.WithLabelValues("support", "applied")))
}
