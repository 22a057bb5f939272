package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCompilation("miss", 20*time.Millisecond)
	c.RecordCompilation("hit", time.Millisecond)
	c.RecordCompilation("hit", time.Millisecond)
	c.RecordParseWarnings("flow", 2)
	c.RecordParseWarnings("flow", 0)
	c.RecordCacheInvalidation("hash_mismatch")
	c.RecordValidation(false, 3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.compilations.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compilations.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.parseWarnings.WithLabelValues("flow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheInvalidations.WithLabelValues("hash_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.validations.WithLabelValues("invalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.validationIssues.WithLabelValues("error")))

	count, err := testutil.GatherAndCount(reg, "dagoc_compile_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})
}
