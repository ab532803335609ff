package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestActivityMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActivityMetrics(reg)

	m.CallLogged("busy")
	m.CallLogged("")
	m.LeadCreated()
	m.LeadCreated()
	m.LeadTransferred()
	m.ReportSubmitted()
	m.QuotaCompleted("add_lead")
	m.QuotaCompleted("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "callcenter_calls_logged_total", "category", "uncategorized"); err != nil || got != 1 {
		t.Fatalf("expected one uncategorized call, got %v %v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "callcenter_daily_quotas_completed_total", "quota", "add_lead"); err != nil || got != 1 {
		t.Fatalf("expected one completed quota, got %v %v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "callcenter_daily_quotas_completed_total", "quota", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected blank quota counted as unknown, got %v %v", got, err)
	}

	if got, err := fetchCounterValue(mfs, "callcenter_leads_created_total", "", ""); err != nil || got != 2 {
		t.Fatalf("expected two leads created, got %v %v", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var activity *ActivityMetrics
	activity.LeadCreated()
	activity.CallLogged("busy")

	var cron *CronJobMetrics
	cron.RecordRun("job", time.Second, nil)
	cron.AddAffected("job", 2)

	var httpMetrics *HTTPMetrics
	httpMetrics.Observe("GET", "/x", 200, time.Millisecond)

	NewActivityMetrics(nil).ReportSubmitted()
	NewHTTPMetrics(nil).Observe("GET", "/x", 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/leads", 201, 20*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "callcenter_http_requests_total", "route", "unmatched"); err != nil || got != 1 {
		t.Fatalf("expected unmatched route counted, got %v %v", got, err)
	}
	series, err := findSeries(mfs, "callcenter_http_request_duration_seconds", "route", "/api/v1/leads")
	if err != nil || series.GetHistogram().GetSampleSum() <= 0 {
		t.Fatalf("expected latency recorded, got %v", err)
	}
}
