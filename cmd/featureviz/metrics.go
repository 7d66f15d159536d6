package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	autoPosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featureviz_autoposes_total",
			Help: "Total number of auto poses run on connected viewers",
		},
		[]string{"status"}, // ok, rejected, failed
	)

	fitRMSD = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "featureviz_fit_rmsd",
			Help:    "RMSD of the fits applied by auto poses",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
		},
	)

	posesSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "featureviz_poses_saved_total",
			Help: "Total number of poses saved",
		},
	)
)
