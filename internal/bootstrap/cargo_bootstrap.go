package bootstrap

import (
	"context"
	"sync"

	"cargo_server/adapter/in/worker"
	"cargo_server/adapter/out/messaging"
	"cargo_server/config"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Worker runs the stream consumer and job pool that process classification,
// linking, and resync jobs in the background.
type Worker struct {
	pool     *worker.Pool
	consumer *messaging.Consumer
	deps     *Dependencies
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	log      zerolog.Logger
}

func NewWorker(cfg *config.Config, log zerolog.Logger, deps *Dependencies) *Worker {
	wlog := log.With().Str("component", "worker").Logger()

	emailProcessor := worker.NewEmailProcessor(
		deps.EmailRepo,
		deps.Orchestrator,
		deps.LinkingService,
		wlog,
	)
	linkingProcessor := worker.NewLinkingProcessor(deps.LinkingService, wlog)

	handler := worker.NewHandler(emailProcessor, linkingProcessor, wlog)

	defaultConfig := worker.DefaultPoolConfig()
	poolConfig := &worker.PoolConfig{
		MaxWorkers:       cfg.WorkerMax,
		QueueSize:        cfg.WorkerQueueSize,
		JobTimeout:       defaultConfig.JobTimeout,
		JobTimeoutByType: defaultConfig.JobTimeoutByType,
	}
	if poolConfig.MaxWorkers == 0 {
		poolConfig.MaxWorkers = defaultConfig.MaxWorkers
	}
	if poolConfig.QueueSize == 0 {
		poolConfig.QueueSize = defaultConfig.QueueSize
	}

	pool := worker.NewPool(handler, poolConfig, wlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:   pool,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		log:    wlog,
	}

	if deps.Redis != nil {
		streams := []string{
			messaging.StreamEmailReceived,
			messaging.StreamBatchLink,
			messaging.StreamShipmentResync,
		}

		w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
			Group:                "cargo-workers",
			Consumer:             cfg.WorkerID,
			Streams:              streams,
			Handler:              &streamHandler{worker: w},
			Logger:               wlog,
			PendingCheckInterval: cfg.ConsumerPendingCheck(),
			PendingIdleTime:      cfg.ConsumerPendingIdle(),
			MaxRetries:           cfg.ConsumerMaxRetries,
		})
		wlog.Info().Int("streams", len(streams)).Msg("stream consumer configured")
	} else {
		wlog.Warn().Msg("redis not available, worker will only process direct submissions")
	}

	return w
}

// streamHandler adapts stream messages to pool jobs.
type streamHandler struct {
	worker *Worker
}

func (h *streamHandler) Handle(ctx context.Context, stream string, data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		h.worker.log.Error().Err(err).Str("stream", stream).Msg("failed to parse stream payload")
		return err
	}

	jobType := streamToJobType(stream)
	msg := worker.NewMessage(jobType, payload)

	if !h.worker.pool.Submit(msg) {
		h.worker.log.Error().Str("job_type", jobType).Msg("failed to submit job to pool")
	}

	return nil
}

func streamToJobType(stream string) string {
	switch stream {
	case messaging.StreamEmailReceived:
		return worker.JobEmailReceived
	case messaging.StreamBatchLink:
		return worker.JobBatchLink
	case messaging.StreamShipmentResync:
		return worker.JobShipmentResync
	default:
		return stream
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pool.Start()
	}()

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.log.Info().Msg("starting stream consumer")
			if err := w.consumer.Run(w.ctx); err != nil && err != context.Canceled {
				w.log.Error().Err(err).Msg("stream consumer error")
			}
		}()
	}

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()
	w.pool.Stop()
	w.wg.Wait()
}

func (w *Worker) Submit(msg *worker.Message) bool {
	if msg.IsPriority() {
		return w.pool.SubmitPriority(msg)
	}
	return w.pool.Submit(msg)
}

func (w *Worker) GetMetrics() worker.PoolMetrics {
	return w.pool.GetMetrics()
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
