package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SpeechRequestTime = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "tts_studio",
	Subsystem: "speech",
	Name:      "request_seconds",
	Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
})

var SpeechErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tts_studio",
	Subsystem: "speech",
	Name:      "errors_total",
}, []string{"code"})

var WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tts_studio",
	Subsystem: "websockets",
	Name:      "conns_total",
})
