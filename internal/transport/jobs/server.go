package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const defaultConcurrency = 10

// Server исполняет задачи из очередей Redis.
type Server struct {
	srv      *asynq.Server
	handlers *Handlers
	l        *logrus.Entry
}

func NewServer(redis asynq.RedisConnOpt, concurrency int, handlers *Handlers, l *logrus.Logger) *Server {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	entry := l.WithFields(logrus.Fields{"component": "jobs", "module": "server"})
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		RetryDelayFunc: RetryDelay,
		Logger:         entry,
	})
	return &Server{srv: srv, handlers: handlers, l: entry}
}

// Start запускает воркеры в фоне.
func (s *Server) Start() error {
	s.l.Info("Starting background job server")
	if err := s.srv.Start(s.handlers.Mux()); err != nil {
		return fmt.Errorf("start job server: %w", err)
	}
	return nil
}

// Shutdown дожидается завершения текущих задач и останавливает воркеры.
func (s *Server) Shutdown() {
	s.l.Info("Stopping background job server")
	s.srv.Shutdown()
}
