package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/avoid/control"
)

const (
	ticksN = "avoid_control_ticks_total"
	ticksH = "Control ticks completed."

	fallbacksN = "avoid_fallback_commands_total"
	fallbacksH = "Commands issued by the fallback instead of inference."

	noRuleFiredN = "avoid_no_rule_fired_total"
	noRuleFiredH = "Ticks where a consequent had no rule firing, by variable."

	sensorErrorsN = "avoid_sensor_errors_total"
	sensorErrorsH = "Failed sonar reads replaced by default readings."

	inferSecondsN = "avoid_inference_duration_seconds"
	inferSecondsH = "Controller inference latency."

	wheelN = "avoid_wheel_command"
	wheelH = "Last commanded wheel speed, by robot and side."

	requestsN = "avoid_http_requests_total"
	requestsH = "HTTP API requests, by route and status code."
)

// Metrics exports controller counters on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	ticks        prometheus.Counter
	fallbacks    prometheus.Counter
	noRuleFired  *prometheus.CounterVec
	sensorErrors prometheus.Counter
	inferSeconds prometheus.Histogram
	wheel        *prometheus.GaugeVec
	requests     *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: ticksN,
			Help: ticksH,
		}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: fallbacksN,
			Help: fallbacksH,
		}),
		noRuleFired: f.NewCounterVec(prometheus.CounterOpts{
			Name: noRuleFiredN,
			Help: noRuleFiredH,
		}, []string{"variable"}),
		sensorErrors: f.NewCounter(prometheus.CounterOpts{
			Name: sensorErrorsN,
			Help: sensorErrorsH,
		}),
		inferSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    inferSecondsN,
			Help:    inferSecondsH,
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12), // 10µs to ~20ms
		}),
		wheel: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: wheelN,
			Help: wheelH,
		}, []string{"robot", "side"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: requestsN,
			Help: requestsH,
		}, []string{"route", "code"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveTick records one control tick of robot. Safe for concurrent use;
// a nil Metrics ignores the call.
func (m *Metrics) ObserveTick(robot int, t control.Tick) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	if t.Command.Fallback {
		m.fallbacks.Inc()
	}
	for _, v := range t.Command.Unfired {
		m.noRuleFired.WithLabelValues(v).Inc()
	}
	if t.SensorErr != nil {
		m.sensorErrors.Inc()
	}
	m.inferSeconds.Observe(t.Infer.Seconds())

	id := strconv.Itoa(robot)
	m.wheel.WithLabelValues(id, "left").Set(t.Command.Left)
	m.wheel.WithLabelValues(id, "right").Set(t.Command.Right)
}

// ObserveInference records a single inference outside a control loop.
func (m *Metrics) ObserveInference(d time.Duration, fallback bool, unfired []string) {
	if m == nil {
		return
	}
	if fallback {
		m.fallbacks.Inc()
	}
	for _, v := range unfired {
		m.noRuleFired.WithLabelValues(v).Inc()
	}
	m.inferSeconds.Observe(d.Seconds())
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
