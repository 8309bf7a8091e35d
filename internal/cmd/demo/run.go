package demorun

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/laneq/internal/config"
	"github.com/rzbill/laneq/internal/deadletter"
	"github.com/rzbill/laneq/internal/lane"
	"github.com/rzbill/laneq/internal/metrics"
	"github.com/rzbill/laneq/internal/queue"
	pebblestore "github.com/rzbill/laneq/internal/storage/pebble"
	logpkg "github.com/rzbill/laneq/pkg/log"
)

type Options struct {
	Config  cfgpkg.Config
	Logger  logpkg.Logger
	Metrics *metrics.Metrics
}

// Run drives a queue with synthetic producers and consumers until the
// configured duration elapses or ctx is cancelled, then drains and reports
// per-lane stats.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}

	policy, err := lane.ParsePolicy(cfg.Queue.Policy)
	if err != nil {
		return err
	}

	var dl *deadletter.Store
	if cfg.Queue.DataDir != "" {
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir: filepath.Join(cfg.Queue.DataDir, "deadletter"),
			Fsync:   pebblestore.FsyncModeInterval,
		})
		if err != nil {
			return fmt.Errorf("open dead-letter store: %w", err)
		}
		defer db.Close()
		dl = deadletter.NewStore(db)
	}

	q, err := queue.New(queue.Config{
		Lanes:         cfg.Queue.Lanes,
		Capacity:      cfg.Queue.Capacity,
		HighWatermark: cfg.Queue.HighWatermark,
		LowWatermark:  cfg.Queue.LowWatermark,
		Policy:        policy,
		AdmissionExpr: cfg.Queue.AdmissionExpr,
		Logger:        logger,
		Metrics:       opts.Metrics,
		DeadLetter:    dl,
	})
	if err != nil {
		return err
	}

	var metricsSrv *http.Server
	if cfg.Demo.MetricsAddr != "" && opts.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", opts.Metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.Demo.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", logpkg.Err(err))
			}
		}()
		logger.Info("metrics listening", logpkg.Str("addr", cfg.Demo.MetricsAddr))
	}

	logger.Info("demo starting",
		logpkg.Int("producers", cfg.Demo.Producers),
		logpkg.Int("consumers", cfg.Demo.Consumers),
		logpkg.Dur("duration", cfg.Demo.Duration.Std()),
	)

	runCtx, cancel := context.WithTimeout(sctx, cfg.Demo.Duration.Std())
	defer cancel()

	var producers sync.WaitGroup
	for p := 0; p < cfg.Demo.Producers; p++ {
		producers.Add(1)
		go func(id int) {
			defer producers.Done()
			laneIdx := id % q.Lanes()
			gate, _ := q.Gate(laneIdx)
			for n := 0; ; n++ {
				if err := gate.Wait(runCtx); err != nil {
					return
				}
				payload := fmt.Appendf(nil, `{"producer":%d,"n":%d}`, id, n)
				res, err := q.Enqueue(laneIdx, payload)
				if err != nil {
					logger.Error("enqueue failed", logpkg.Int("producer", id), logpkg.Err(err))
					return
				}
				if res == lane.EnqueueShutDown {
					return
				}
				select {
				case <-runCtx.Done():
					return
				case <-time.After(time.Millisecond):
				}
			}
		}(p)
	}

	var consumers sync.WaitGroup
	var delivered sync.Map
	for c := 0; c < cfg.Demo.Consumers; c++ {
		consumers.Add(1)
		go func(id int) {
			defer consumers.Done()
			var count uint64
			for {
				it, laneIdx, status := q.DequeueNext(0)
				if status == lane.DequeueShutDown {
					delivered.Store(id, count)
					return
				}
				if status != lane.DequeueOK {
					continue
				}
				count++
				logger.Debug("consumed",
					logpkg.Int("consumer", id),
					logpkg.Int("lane", laneIdx),
					logpkg.Uint64("seq", it.Seq),
				)
			}
		}(c)
	}

	<-runCtx.Done()
	producers.Wait()
	q.RequestShutdown()
	consumers.Wait()

	if metricsSrv != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsSrv.Shutdown(shutCtx)
		shutCancel()
	}

	for i := 0; i < q.Lanes(); i++ {
		st, _ := q.Stats(i)
		logger.Info("lane stats",
			logpkg.Int("lane", i),
			logpkg.Uint64("accepted", st.Accepted),
			logpkg.Uint64("rejected", st.Rejected),
			logpkg.Uint64("evicted", st.Evicted),
			logpkg.Uint64("dequeued", st.Dequeued),
		)
	}
	var total uint64
	delivered.Range(func(_, v any) bool {
		total += v.(uint64)
		return true
	})
	logger.Info("demo finished", logpkg.Uint64("delivered", total))
	return nil
}
