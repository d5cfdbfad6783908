package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campushub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WorkSubmissions counts student work submissions by jenis (category).
	WorkSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_work_submissions_total",
		Help: "Total number of student work submissions by category",
	}, []string{"jenis"})

	// WorkApprovalDecisions counts approval decisions on student works.
	WorkApprovalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_work_approval_decisions_total",
		Help: "Total number of approval decisions by outcome",
	}, []string{"decision"})

	// UploadBytes records uploaded file sizes by owner kind.
	UploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campushub_upload_bytes",
		Help:    "Size of uploaded files in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	}, []string{"owner_kind"})

	// CacheHits counts cache hits by key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_cache_hits_total",
		Help: "Total number of cache hits by key prefix",
	}, []string{"prefix"})

	// CacheMisses counts cache misses by key prefix.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_cache_misses_total",
		Help: "Total number of cache misses by key prefix",
	}, []string{"prefix"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordApprovalDecision increments the approval decisions counter.
func RecordApprovalDecision(decision string) {
	WorkApprovalDecisions.WithLabelValues(decision).Inc()
}

// RecordWorkSubmission increments the submissions counter for the category.
func RecordWorkSubmission(jenis string) {
	if jenis == "" {
		jenis = "lainnya"
	}
	WorkSubmissions.WithLabelValues(jenis).Inc()
}

// RecordUpload records an uploaded file size for the owner kind.
func RecordUpload(ownerKind string, size int64) {
	UploadBytes.WithLabelValues(ownerKind).Observe(float64(size))
}
