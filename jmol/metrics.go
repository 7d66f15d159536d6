package jmol

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	viewerConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "featureviz_viewer_active_connections",
			Help: "Number of connected remote viewers",
		},
	)

	scriptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featureviz_viewer_scripts_total",
			Help: "Total number of scripts sent to remote viewers",
		},
		[]string{"outcome"}, // ok, script_error, failed
	)
)
