package utils

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrWorkerStopped = errors.New("worker stopped")

// Job 由 worker 执行的任务，ctx 在 worker 停止时取消
type Job func(ctx context.Context)

// SerialWorker 单协程任务队列：按入队顺序逐个执行，任意时刻最多一个任务在运行
type SerialWorker struct {
	jobs   chan Job
	quit   chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSerialWorker 创建 worker，queueSize 为等待队列长度
func NewSerialWorker(queueSize int, logger *zap.Logger) *SerialWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &SerialWorker{
		jobs:   make(chan Job, queueSize),
		quit:   make(chan struct{}),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动唯一的处理协程，重复调用无效
func (w *SerialWorker) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(1)
		go w.loop()
		w.logger.Info("serial worker started", zap.Int("queue_size", cap(w.jobs)))
	})
}

func (w *SerialWorker) loop() {
	defer w.wg.Done()
	for {
		// 停止优先于继续取任务
		select {
		case <-w.quit:
			return
		default:
		}

		select {
		case job := <-w.jobs:
			w.run(job)
		case <-w.quit:
			return
		}
	}
}

// run 执行单个任务，panic 不会让 worker 退出
func (w *SerialWorker) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("serial worker job panicked", zap.Any("panic", r))
		}
	}()
	job(w.ctx)
}

// Submit 将任务放入队列；队列已满时阻塞，直到有空位、ctx 结束或 worker 停止
func (w *SerialWorker) Submit(ctx context.Context, job Job) error {
	select {
	case <-w.quit:
		return ErrWorkerStopped
	default:
	}

	select {
	case w.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrWorkerStopped
	}
}

// Pending 返回排队中（未开始执行）的任务数
func (w *SerialWorker) Pending() int {
	return len(w.jobs)
}

// Stop 取消运行中任务的 ctx 并等待处理协程退出，队列中剩余任务被丢弃
func (w *SerialWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		w.cancel()
		w.wg.Wait()
		w.logger.Info("serial worker stopped", zap.Int("dropped", len(w.jobs)))
	})
}
