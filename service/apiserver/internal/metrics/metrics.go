package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-zero/core/logx"
)

type MetricsContext struct {
	CreateNftTotalMetrics prometheus.Counter

	CreateNftMetrics prometheus.Counter

	EvolveNftMetrics prometheus.Counter
}

var metricsContext MetricsContext

func InitMetricsContext() {
	createNftMetrics := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "picha",
		Name:      "created_nft_count",
		Help:      "created nft count",
	})

	createNftTotalMetrics := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "picha",
		Name:      "created_nft_total_count",
		Help:      "create nft request total count",
	})

	evolveNftMetrics := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "picha",
		Name:      "evolved_nft_count",
		Help:      "evolved nft count",
	})

	if err := prometheus.Register(createNftMetrics); err != nil {
		logx.Errorf("prometheus.Register createNftMetrics error: %v", err)
		return
	}

	if err := prometheus.Register(createNftTotalMetrics); err != nil {
		logx.Errorf("prometheus.Register createNftTotalMetrics error: %v", err)
		return
	}

	if err := prometheus.Register(evolveNftMetrics); err != nil {
		logx.Errorf("prometheus.Register evolveNftMetrics error: %v", err)
		return
	}

	metricsContext = MetricsContext{
		CreateNftMetrics:      createNftMetrics,
		CreateNftTotalMetrics: createNftTotalMetrics,
		EvolveNftMetrics:      evolveNftMetrics,
	}
}

func MetricsHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/api/create-nft" {
			metricsContext.CreateNftTotalMetrics.Inc()
		}
		next(writer, request)
	}
}

func CreateNftMetricsInc() {
	metricsContext.CreateNftMetrics.Inc()
}

func EvolveNftMetricsInc() {
	metricsContext.EvolveNftMetrics.Inc()
}
