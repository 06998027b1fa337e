package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_banguard_evaluations",
	Help: "Number of ban guard evaluations by outcome",
}, []string{"outcome"})

var ruleViolations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_banguard_rule_violations",
	Help: "Number of built-in rule violations by rule key",
}, []string{"rule"})
