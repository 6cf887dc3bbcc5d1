// Package metrics 证明与验证的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zkprivacy"

// 结果标签值
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultValid    = "valid"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected" // 本地检查拒绝，未调用证明器
)

// ProofMetrics 证明指标
//
// 方法对 nil 接收者安全，测试中可直接传 nil。
type ProofMetrics struct {
	proofTotal    *prometheus.CounterVec
	proofDuration *prometheus.HistogramVec
	verifyTotal   *prometheus.CounterVec
}

// NewRegistry 创建带 Go 运行时与进程指标的注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewProofMetrics 创建证明指标；reg 为 nil 时指标不注册
func NewProofMetrics(reg prometheus.Registerer) *ProofMetrics {
	factory := promauto.With(reg)
	return &ProofMetrics{
		proofTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proof_total",
				Help:      "Total number of proof generations by circuit and result",
			},
			[]string{"circuit", "result"},
		),
		proofDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "proof_duration_seconds",
				Help:      "Proof generation duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"circuit"},
		),
		verifyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verify_total",
				Help:      "Total number of proof verifications by circuit and result",
			},
			[]string{"circuit", "result"},
		),
	}
}

// ObserveProof 记录一次证明生成
func (m *ProofMetrics) ObserveProof(circuit, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.proofTotal.WithLabelValues(circuit, result).Inc()
	if result == ResultOK {
		m.proofDuration.WithLabelValues(circuit).Observe(duration.Seconds())
	}
}

// ObserveVerify 记录一次验证
func (m *ProofMetrics) ObserveVerify(circuit, result string) {
	if m == nil {
		return
	}
	m.verifyTotal.WithLabelValues(circuit, result).Inc()
}
