package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Define a custom registry
	Registry *prometheus.Registry

	BulkWriteCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_opcode_emulator_bulk_writes_total",
		Help: "The total number of bulk writes sent to the server, by outcome",
	}, []string{"database", "collection", "outcome"})

	BulkWriteFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_opcode_emulator_bulk_write_failures_total",
		Help: "The total number of bulk writes rejected by the server, by failure kind",
	}, []string{"database", "collection", "failure"})

	RemoveRequestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_opcode_emulator_remove_requests_total",
		Help: "The total number of legacy remove requests handled, by status",
	}, []string{"database", "collection", "status"})

	RemovedDocumentsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_opcode_emulator_removed_documents_total",
		Help: "The total number of documents reported as removed by acknowledged remove requests",
	}, []string{"database", "collection"})

	RemoveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mongo_opcode_emulator_remove_duration_seconds",
		Help:    "The time spent executing legacy remove requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"database", "collection"})
)

func init() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(BulkWriteCounter)
	Registry.MustRegister(BulkWriteFailureTotal)
	Registry.MustRegister(RemoveRequestCounter)
	Registry.MustRegister(RemovedDocumentsCounter)
	Registry.MustRegister(RemoveDuration)
}
