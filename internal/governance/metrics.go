package governance

import "github.com/prometheus/client_golang/prometheus"

var (
	proposalsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "govhub",
		Subsystem: "governance",
		Name:      "proposals_created_total",
		Help:      "The total number of proposals created",
	})
	votesCast = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "govhub",
		Subsystem: "governance",
		Name:      "votes_cast_total",
		Help:      "The total number of ballots cast, by kind",
	}, []string{"kind"})
	statusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "govhub",
		Subsystem: "governance",
		Name:      "status_transitions_total",
		Help:      "The total number of proposal status transitions",
	}, []string{"from", "to"})
	executions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "govhub",
		Subsystem: "governance",
		Name:      "executions_total",
		Help:      "The total number of proposal executions, by result",
	}, []string{"result"})
	resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "govhub",
		Subsystem: "governance",
		Name:      "resolve_status_duration_seconds",
		Help:      "The latency of recomputing a proposal status",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 14),
	})
)

func init() {
	prometheus.MustRegister(proposalsCreated)
	prometheus.MustRegister(votesCast)
	prometheus.MustRegister(statusTransitions)
	prometheus.MustRegister(executions)
	prometheus.MustRegister(resolveDuration)
}
