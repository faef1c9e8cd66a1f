package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	ChallengesIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_challenges_issued_total",
			Help: "Total number of login challenges issued.",
		},
		[]string{"service", "result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of signature verification attempts.",
		},
		[]string{"service", "result"},
	)

	SessionsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sessions_issued_total",
			Help: "Total number of session tokens minted.",
		},
		[]string{"service", "result"},
	)

	VotesCastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total number of vote transitions applied.",
		},
		[]string{"service", "transition", "result"},
	)

	SubscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberships_subscriptions_total",
			Help: "Total number of subscription attempts.",
		},
		[]string{"service", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	AuthRegistrationsTotal = AuthRegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	ChallengesIssuedTotal = ChallengesIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AuthLoginsTotal = AuthLoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	SessionsIssuedTotal = SessionsIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	VotesCastTotal = VotesCastTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	SubscriptionsTotal = SubscriptionsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		ChallengesIssuedTotal,
		AuthLoginsTotal,
		SessionsIssuedTotal,
		VotesCastTotal,
		SubscriptionsTotal,
	)
}
