package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ruleMatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_firewall_rule_matches",
	Help: "Number of firewall rule matches by scope",
}, []string{"scope"})

var escalations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chatguard_firewall_escalations",
	Help: "Number of escalation steps fired",
})

var ruleLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chatguard_firewall_rule_load_errors",
	Help: "Number of failed rule loads from the rule store",
})
