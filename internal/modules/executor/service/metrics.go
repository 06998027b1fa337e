package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var executed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_executor_actions_executed",
	Help: "Number of executed actions by kind",
}, []string{"kind"})

var skipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_executor_actions_skipped",
	Help: "Number of skipped actions by reason",
}, []string{"reason"})

var failed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_executor_actions_failed",
	Help: "Number of actions whose platform call failed, by kind",
}, []string{"kind"})

var autoDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_executor_auto_deletes",
	Help: "Number of scheduled auto-deletions by result",
}, []string{"result"})
