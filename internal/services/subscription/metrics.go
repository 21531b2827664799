package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var paymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lms_subscription_events_total",
	Help: "Количество событий жизненного цикла подписки по типам.",
}, []string{"event"})
