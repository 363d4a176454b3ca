package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGenerateDeliveries = "deliveries.generate"

const TaskApplyFallback = "deliveries.fallback"

// GenerateDeliveriesPayload parameterizes a generation run. WindowDays 0
// means use the configured default window.
type GenerateDeliveriesPayload struct {
	WindowDays int `json:"windowDays,omitempty"`
}

func NewGenerateDeliveriesTask(payload GenerateDeliveriesPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateDeliveries, data), nil
}

func ParseGenerateDeliveriesPayload(task *asynq.Task) (GenerateDeliveriesPayload, error) {
	var payload GenerateDeliveriesPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GenerateDeliveriesPayload{}, err
	}
	return payload, nil
}

func NewApplyFallbackTask() *asynq.Task {
	return asynq.NewTask(TaskApplyFallback, nil)
}
