// Package metrics board 服务的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "board"

var (
	// HTTPRequestsTotal HTTP 请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// NotificationsTotal 通知分发结果：created / deduplicated / suppressed / publish_failed
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification dispatch outcomes",
		},
		[]string{"alarm_type", "result"},
	)

	// AttachmentsTotal 附件状态流转：uploaded / promoted / removed / swept
	AttachmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_total",
			Help:      "Attachment lifecycle transitions",
		},
		[]string{"op"},
	)

	// OrphanBlobsTotal 记录已删除但对象删除失败的次数
	OrphanBlobsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_blobs_total",
			Help:      "Blobs left behind after their attachment record was deleted",
		},
	)
)

// RecordNotification 记录一次通知分发结果
func RecordNotification(alarmType, result string) {
	NotificationsTotal.WithLabelValues(alarmType, result).Inc()
}

// RecordAttachments 记录附件状态流转
func RecordAttachments(op string, n int) {
	if n <= 0 {
		return
	}
	AttachmentsTotal.WithLabelValues(op).Add(float64(n))
}

// RecordOrphanBlob 记录一个孤儿对象
func RecordOrphanBlob() {
	OrphanBlobsTotal.Inc()
}
