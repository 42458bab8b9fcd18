package internaldefs

import (
	authcore "github.com/arnabpal2022/authcore"
)

// CounterDef binds a core metric ID to its stable exported name.
//
// CounterDef instances are configured at package init and treated as immutable.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its stable exported name.
//
// HistogramDef instances are configured at package init and treated as immutable.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the exporters publish, in a fixed order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricRegisterSuccess, Name: "authcore_register_success_total", Help: "Successful account registrations."},
	{ID: authcore.MetricRegisterDuplicate, Name: "authcore_register_duplicate_total", Help: "Registrations rejected for an existing email."},
	{ID: authcore.MetricVerifySuccess, Name: "authcore_verify_success_total", Help: "Successful email verifications."},
	{ID: authcore.MetricVerifyFailure, Name: "authcore_verify_failure_total", Help: "Rejected email verification tokens."},
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Rejected refresh presentations."},
	{ID: authcore.MetricRefreshReuseDetected, Name: "authcore_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricBlacklistHit, Name: "authcore_blacklist_hit_total", Help: "Requests rejected by the access token blacklist."},
	{ID: authcore.MetricStampMismatch, Name: "authcore_stamp_mismatch_total", Help: "Tokens rejected for a stale security stamp."},
	{ID: authcore.MetricResetRequest, Name: "authcore_password_reset_request_total", Help: "Password reset requests, including silent ones."},
	{ID: authcore.MetricResetSuccess, Name: "authcore_password_reset_success_total", Help: "Completed password resets."},
	{ID: authcore.MetricResetFailure, Name: "authcore_password_reset_failure_total", Help: "Rejected password reset tokens."},
	{ID: authcore.MetricAuthenticateSuccess, Name: "authcore_authenticate_success_total", Help: "Accepted access tokens."},
	{ID: authcore.MetricAuthenticateFailure, Name: "authcore_authenticate_failure_total", Help: "Rejected access tokens."},
}

// HistogramDefs lists every histogram the exporters publish.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricAuthenticateLatency, Name: "authcore_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds holds the upper bucket bounds in seconds, matching the
// core's millisecond buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds the bound spellings usable inside a metric name.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// eight-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
