package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MSagaRuns                MetricKey = "saga_runs_total"
	MDomainEvents            MetricKey = "domain_events_total"
)

// Instrument describes one metric exposed by the service.
type Instrument struct {
	Key       MetricKey
	Help      string
	Labels    []string
	Histogram bool
}

// Instruments is the full metric set; adapters register exactly these.
var Instruments = []Instrument{
	{Key: MUsecaseRequests, Help: "Total number of use case invocations.", Labels: []string{"use_case", "outcome"}},
	{Key: MUsecaseDuration, Help: "Duration of use case execution in seconds.", Labels: []string{"use_case"}, Histogram: true},
	{Key: MHTTPRequests, Help: "Total number of HTTP requests.", Labels: []string{"method", "route", "status"}},
	{Key: MHTTPRequestDuration, Help: "Duration of HTTP requests in seconds.", Labels: []string{"method", "route", "status"}, Histogram: true},
	{Key: MExternalRequests, Help: "Total number of calls to external dependencies.", Labels: []string{"peer", "endpoint", "outcome"}},
	{Key: MExternalRequestDuration, Help: "Duration of calls to external dependencies in seconds.", Labels: []string{"peer", "endpoint"}, Histogram: true},
	{Key: MSagaRuns, Help: "Total number of saga executions.", Labels: []string{"saga", "outcome"}},
	{Key: MDomainEvents, Help: "Total number of domain events handled.", Labels: []string{"event"}},
}
