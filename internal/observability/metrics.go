package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	interviewsCreated     prometheus.Counter
	answersSubmitted      *prometheus.CounterVec
	interviewsCompleted   prometheus.Counter
	interviewOverallScore prometheus.Histogram
	resumeUploadsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and the interview lifecycle.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		interviewsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interviews_created_total",
			Help: "Number of interview sessions created.",
		})

		answersSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_answers_submitted_total",
			Help: "Number of answers recorded, by where the evaluation came from.",
		}, []string{"source"})

		interviewsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interviews_completed_total",
			Help: "Number of interview sessions completed.",
		})

		interviewOverallScore = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_overall_score",
			Help:    "Distribution of overall scores locked in at completion.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		})

		resumeUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Resume upload attempts by outcome.",
		}, []string{"status"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			interviewsCreated,
			answersSubmitted,
			interviewsCompleted,
			interviewOverallScore,
			resumeUploadsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// InterviewsCreated counts created sessions.
func InterviewsCreated() prometheus.Counter {
	RegisterMetrics()
	return interviewsCreated
}

// AnswersSubmitted counts recorded answers labelled by evaluation source (client, server, none).
func AnswersSubmitted() *prometheus.CounterVec {
	RegisterMetrics()
	return answersSubmitted
}

// InterviewsCompleted counts completed sessions.
func InterviewsCompleted() prometheus.Counter {
	RegisterMetrics()
	return interviewsCompleted
}

// InterviewOverallScore observes completion scores.
func InterviewOverallScore() prometheus.Histogram {
	RegisterMetrics()
	return interviewOverallScore
}

// ResumeUploads counts resume uploads labelled by outcome.
func ResumeUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return resumeUploadsTotal
}
