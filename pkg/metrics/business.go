package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 业务指标。RegisterBusinessMetrics 之前为 nil，记录函数直接跳过。
var (
	tasksCreatedTotal   *prometheus.CounterVec
	workLogsTotal       *prometheus.CounterVec
	rollupDepth         prometheus.Histogram
	loginsTotal         *prometheus.CounterVec
	aiRequestsTotal     *prometheus.CounterVec
	aiRequestDuration   *prometheus.HistogramVec
	messagesMarkedTotal prometheus.Counter
)

// RegisterBusinessMetrics 在 reg 上注册业务指标，reg 为 nil 时不做任何事。
func RegisterBusinessMetrics(reg *prometheus.Registry) {
	if reg == nil {
		return
	}

	tasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_tasks_created_total",
			Help: "Total number of tasks created.",
		},
		[]string{"assigned_type", "kind"},
	)
	workLogsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_work_logs_total",
			Help: "Total number of work log submissions.",
		},
		[]string{"result"},
	)
	rollupDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worklog_progress_rollup_depth",
			Help:    "Number of ancestor tasks recomputed per progress update.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 32},
		},
	)
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"status"},
	)
	aiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_ai_requests_total",
			Help: "Total number of AI analysis requests.",
		},
		[]string{"provider", "status"},
	)
	aiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worklog_ai_request_duration_seconds",
			Help:    "AI analysis request duration in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"provider"},
	)
	messagesMarkedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_messages_marked_read_total",
			Help: "Total number of messages marked read on fetch.",
		},
	)

	reg.MustRegister(
		tasksCreatedTotal,
		workLogsTotal,
		rollupDepth,
		loginsTotal,
		aiRequestsTotal,
		aiRequestDuration,
		messagesMarkedTotal,
	)
}

// RecordTaskCreated 记录一次任务创建，kind 为 task 或 subtask。
func RecordTaskCreated(assignedType, kind string) {
	if tasksCreatedTotal == nil {
		return
	}
	tasksCreatedTotal.WithLabelValues(assignedType, kind).Inc()
}

// RecordWorkLog 记录一次日志提交结果（ok / rejected / error）。
func RecordWorkLog(result string) {
	if workLogsTotal == nil {
		return
	}
	workLogsTotal.WithLabelValues(result).Inc()
}

// ObserveRollupDepth 记录一次进度汇总向上更新的层数。
func ObserveRollupDepth(depth int) {
	if rollupDepth == nil {
		return
	}
	rollupDepth.Observe(float64(depth))
}

// RecordLogin 记录登录结果。
func RecordLogin(status string) {
	if loginsTotal == nil {
		return
	}
	loginsTotal.WithLabelValues(status).Inc()
}

// ObserveAIRequest 记录一次 AI 调用的结果和耗时。
func ObserveAIRequest(provider, status string, elapsed time.Duration) {
	if aiRequestsTotal == nil {
		return
	}
	aiRequestsTotal.WithLabelValues(provider, status).Inc()
	aiRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// AddMessagesMarkedRead 累加被标记为已读的消息数。
func AddMessagesMarkedRead(n int) {
	if messagesMarkedTotal == nil || n <= 0 {
		return
	}
	messagesMarkedTotal.Add(float64(n))
}
