package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysisOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "emotunes_analyses_total",
	Help: "Song analyses by status and failure kind.",
}, []string{"status", "failure"})
