package sighost

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opGenerateKeyPair = "generate_key_pair"
	opImportKeyPair   = "import_key_pair"
	opExportKeyPair   = "export_key_pair"
	opPublicKey       = "public_key"
	opOpenSignState   = "open_sign_state"
	opSignUpdate      = "sign_update"
	opSignFinalize    = "sign_finalize"
	opOpenVerifyState = "open_verify_state"
	opVerifyUpdate    = "verify_update"
	opVerifyFinalize  = "verify_finalize"
	opCloseHandle     = "close_handle"
)

var (
	hostOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sighost_operations",
			Help: "Number of operations (per operation).",
		},
		[]string{"operation"},
	)
	hostOperationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sighost_operation_failures",
			Help: "Number of failed operations (per operation).",
		},
		[]string{"operation"},
	)
	hostCollectors = []prometheus.Collector{
		hostOperations,
		hostOperationFailures,
	}

	metricsOnce sync.Once
)

func recordOperation(op string, errp *error) {
	labels := prometheus.Labels{"operation": op}
	hostOperations.With(labels).Inc()
	if *errp != nil {
		hostOperationFailures.With(labels).Inc()
	}
}

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(hostCollectors...)
	})
}
