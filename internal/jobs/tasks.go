package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTypeDriftCheck = "drift:check"

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// DriftCheckPayload labels what triggered a market drift pass.
type DriftCheckPayload struct {
	Trigger string `json:"trigger"`
}

func NewDriftCheckTask(trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(DriftCheckPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeDriftCheck, payload), nil
}
