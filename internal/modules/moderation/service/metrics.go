package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeUnmanaged = "unmanaged"
	outcomeJoinLeave = "join_leave"
	outcomeClean     = "clean"
	outcomeEnforced  = "enforced"
)

var processed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_messages_processed",
	Help: "Number of processed messages by outcome",
}, []string{"outcome"})

var processDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "chatguard_message_processing_seconds",
	Help:    "Time spent evaluating and enforcing one message",
	Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
})

var sweptEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_housekeeping_swept",
	Help: "Number of entries evicted by housekeeping by store",
}, []string{"store"})
