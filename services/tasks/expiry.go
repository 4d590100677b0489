package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeExpirePending = "booking:expire_pending"

// ExpirePayload tells the worker which creation cutoff to sweep with.
type ExpirePayload struct {
	Cutoff time.Time `json:"cutoff"`
}

// NewExpirePendingTask builds the sweep task cancelling Pending bookings
// created before the cutoff.
func NewExpirePendingTask(cutoff time.Time) (*asynq.Task, error) {
	b, err := json.Marshal(ExpirePayload{Cutoff: cutoff})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExpirePending, b), nil
}
