package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// leadsIngested counts ingestion attempts by result
	// (ok, validation, conflict, server).
	leadsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Lead submissions processed, by result.",
		},
		[]string{"result"},
	)

	// leadNotifications counts operator emails by provider and result
	// (sent, failed, skipped).
	leadNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notification emails, by provider and result.",
		},
		[]string{"provider", "result"},
	)
)

func init() {
	prometheus.MustRegister(leadsIngested, leadNotifications)
}
