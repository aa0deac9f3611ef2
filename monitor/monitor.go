package monitor

import (
	"github.com/grpc-boot/atom"

	"go.uber.org/zap"
)

// Monitor is a fixed registry of named metrics, gauges and audits. Register
// everything before sharing the Monitor; afterwards every method is safe for
// concurrent use and lock-free.
type Monitor struct {
	appName    string
	metricList map[string]*Metric
	gaugeList  map[string]*Gauge
	auditList  map[string]*Audit
}

type Snapshot struct {
	AppName string             `json:"app_name"`
	Metrics map[string]uint64  `json:"metrics"`
	Gauges  map[string]float64 `json:"gauges,omitempty"`
	Audits  map[string]int64   `json:"audits,omitempty"`
}

func NewMonitor(appName string, nameList ...string) (m *Monitor) {
	m = &Monitor{
		appName:    appName,
		metricList: make(map[string]*Metric, len(nameList)),
		gaugeList:  make(map[string]*Gauge),
		auditList:  make(map[string]*Audit),
	}

	for _, name := range nameList {
		m.metricList[name] = &Metric{name: name}
	}

	return
}

func (m *Monitor) RegisterGauge(nameList ...string) *Monitor {
	for _, name := range nameList {
		m.gaugeList[name] = &Gauge{name: name}
	}
	return m
}

func (m *Monitor) RegisterAudit(nameList ...string) *Monitor {
	for _, name := range nameList {
		m.auditList[name] = NewAudit(name)
	}
	return m
}

func (m *Monitor) AddInt64(name string, val int64) (newValue uint64, exists bool) {
	metric, exists := m.metricList[name]
	if exists {
		return metric.AddInt64(val), exists
	}

	return 0, exists
}

func (m *Monitor) Add(name string, val uint64) (newValue uint64, exists bool) {
	metric, exists := m.metricList[name]
	if exists {
		return metric.Add(val), exists
	}

	return 0, exists
}

func (m *Monitor) Set(name string, val uint64) {
	if metric, exists := m.metricList[name]; exists {
		metric.Set(val)
	}
}

func (m *Monitor) GetMetric(name string) (metric *Metric, exists bool) {
	metric, exists = m.metricList[name]
	return
}

func (m *Monitor) Get(name string) (val uint64, exists bool) {
	metric, exists := m.metricList[name]
	if !exists {
		return
	}
	val = metric.Get()
	return
}

func (m *Monitor) SetGauge(name string, val float64) {
	if gauge, exists := m.gaugeList[name]; exists {
		gauge.Set(val)
	}
}

func (m *Monitor) GetGauge(name string) (gauge *Gauge, exists bool) {
	gauge, exists = m.gaugeList[name]
	return
}

func (m *Monitor) GetAudit(name string) (audit *Audit, exists bool) {
	audit, exists = m.auditList[name]
	return
}

// Snapshot reads every value once. Values are read independently, so the
// snapshot is not a consistent cut across metrics.
func (m *Monitor) Snapshot() Snapshot {
	s := Snapshot{
		AppName: m.appName,
		Metrics: make(map[string]uint64, len(m.metricList)),
	}

	for name, metric := range m.metricList {
		s.Metrics[name] = metric.Get()
	}

	if len(m.gaugeList) > 0 {
		s.Gauges = make(map[string]float64, len(m.gaugeList))
		for name, gauge := range m.gaugeList {
			s.Gauges[name] = gauge.Get()
		}
	}

	if len(m.auditList) > 0 {
		s.Audits = make(map[string]int64, len(m.auditList))
		for name, audit := range m.auditList {
			s.Audits[name] = audit.Live()
		}
	}

	return s
}

func (m *Monitor) Json() ([]byte, error) {
	return atom.JsonMarshal(m.Snapshot())
}

// Report logs the snapshot at info level, one field per value, and warns for
// every audit with live payloads.
func (m *Monitor) Report(logger *zap.Logger) {
	s := m.Snapshot()

	fields := make([]zap.Field, 0, len(s.Metrics)+len(s.Gauges)+1)
	fields = append(fields, zap.String("app", s.AppName))
	for name, val := range s.Metrics {
		fields = append(fields, zap.Uint64(name, val))
	}
	for name, val := range s.Gauges {
		fields = append(fields, zap.Float64(name, val))
	}
	logger.Info("monitor report", fields...)

	for name, live := range s.Audits {
		if live != 0 {
			logger.Warn("live references",
				zap.String("app", s.AppName),
				zap.String("audit", name),
				zap.Int64("live", live),
			)
		}
	}
}
