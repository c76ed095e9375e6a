package evolver

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/proc"

	"github.com/picha-labs/picha/service/evolver/config"
	"github.com/picha-labs/picha/service/evolver/evolver"
)

const GracefulShutdownTimeout = 5 * time.Second

var (
	evolutionSweepTimeMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "picha",
		Name:      "evolver_sweep_time",
		Help:      "evolution sweep time",
	})
	canisterRetryTimeMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "picha",
		Name:      "evolver_canister_retry_time",
	})
)

func Run(configFile string) error {
	var c config.Config
	conf.MustLoad(configFile, &c)
	logx.MustSetup(c.LogConf)
	logx.DisableStat()
	if err := registerMetrics(); err != nil {
		return err
	}

	e, err := evolver.NewEvolver(c)
	if err != nil {
		panic(err)
	}
	cronJob := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	_, err = cronJob.AddFunc("@every 5m", func() {
		logx.Info("==========start evolution sweep==========")
		start := time.Now()
		if err := e.EvolveDueNfts(); err != nil {
			logx.Errorf("failed to run evolution sweep, %v", err)
		} else {
			evolutionSweepTimeMetric.Set(float64(time.Since(start).Milliseconds()))
		}
		if err := e.MonitorBacklog(); err != nil {
			logx.Errorf("failed to monitor backlog, %v", err)
		}
	})
	if err != nil {
		panic(err)
	}
	_, err = cronJob.AddFunc("@every 30m", func() {
		logx.Info("==========start canister retry pass==========")
		start := time.Now()
		e.RetryCanisterMints()
		canisterRetryTimeMetric.Set(float64(time.Since(start).Milliseconds()))
	})
	if err != nil {
		panic(err)
	}
	cronJob.Start()

	exit := make(chan struct{})
	proc.SetTimeToForceQuit(GracefulShutdownTimeout)
	proc.AddShutdownListener(func() {
		logx.Info("start to shutdown evolver......")
		<-cronJob.Stop().Done()
		e.Shutdown()
		_ = logx.Close()
		exit <- struct{}{}
	})

	logx.Info("evolver cronjob is starting......")

	<-exit
	return nil
}

func registerMetrics() error {
	if err := prometheus.Register(evolutionSweepTimeMetric); err != nil {
		return fmt.Errorf("prometheus.Register evolutionSweepTimeMetric error: %v", err)
	}
	if err := prometheus.Register(canisterRetryTimeMetric); err != nil {
		return fmt.Errorf("prometheus.Register canisterRetryTimeMetric error: %v", err)
	}
	return nil
}
