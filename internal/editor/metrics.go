package editor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submit outcomes.
const (
	outcomeSuccess          = "success"
	outcomeValidationFailed = "validation_failed"
	outcomeUploadFailed     = "upload_failed"
	outcomeUpdateFailed     = "update_failed"
)

var (
	submitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docsys_submit_total",
		Help: "Edit session submissions by outcome.",
	}, []string{"outcome"})

	oldFileDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docsys_old_file_delete_failures_total",
		Help: "Replaced document files that could not be deleted.",
	})

	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docsys_edit_sessions_open",
		Help: "Edit sessions currently open.",
	})
)
