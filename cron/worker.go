package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotify/config"
	bookingRepo "slotify/database/repository/booking"
	"slotify/services/tasks"

	"github.com/hibiken/asynq"
)

// InitExpiryWorker runs the async worker that cancels stale Pending
// bookings so they stop holding capacity, plus the loop that enqueues the
// periodic sweep.
func InitExpiryWorker(repo bookingRepo.BookingRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeExpirePending, handleExpireTask(repo))

	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[ExpiryWorker] failed to start worker: %v", err)
		}
	}()

	go enqueueSweeps(redisOpts)
}

func handleExpireTask(repo bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid payload: %v", err)
			return err
		}

		expired, err := repo.ExpirePending(ctx, p.Cutoff)
		if err != nil {
			log.Printf("[ExpiryWorker] sweep failed: %v", err)
			return err
		}
		if expired > 0 {
			log.Printf("[ExpiryWorker] cancelled %d stale pending bookings", expired)
		}
		return nil
	}
}

// enqueueSweeps schedules one expiry sweep per minute.
func enqueueSweeps(redisOpts asynq.RedisClientOpt) {
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-config.PendingExpiry())
		task, err := tasks.NewExpirePendingTask(cutoff)
		if err != nil {
			log.Printf("[ExpiryWorker] failed to build sweep task: %v", err)
			continue
		}
		if _, err := client.Enqueue(task); err != nil {
			log.Printf("[ExpiryWorker] failed to enqueue sweep: %v", err)
		}
	}
}
