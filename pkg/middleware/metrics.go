package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はHTTPリクエストのPrometheusメトリクスを保持する。
type Metrics struct {
	// requests はルート・メソッド・ステータスごとのリクエスト数。
	requests *prometheus.CounterVec
	// duration はルート・メソッドごとの処理時間。
	duration *prometheus.HistogramVec
}

// NewMetrics はメトリクスを生成し、指定したRegistererに登録する。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devconnector",
			Name:      "http_requests_total",
			Help:      "処理したHTTPリクエストの数",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "devconnector",
			Name:      "http_request_duration_seconds",
			Help:      "HTTPリクエストの処理時間",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Handler はリクエストごとにメトリクスを記録するGinミドルウェアを返す。
// ルートが一致しないリクエストは "unmatched" として集計する。
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
