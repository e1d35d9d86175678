// Package followup schedules and delivers checkout recovery nudges via
// asynq. Nudges are queued when a visitor dismisses the checkout UI and
// sent later over WhatsApp, unless the lead has paid in the meantime.
package followup

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCheckoutNudge = "followup.checkout.nudge"

type CheckoutNudgePayload struct {
	SessionID string `json:"sessionId"`
	LeadID    string `json:"leadId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	OrderID   string `json:"orderId,omitempty"`
}

func NewCheckoutNudgeTask(payload CheckoutNudgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutNudge, data), nil
}

func ParseCheckoutNudgePayload(task *asynq.Task) (CheckoutNudgePayload, error) {
	var payload CheckoutNudgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CheckoutNudgePayload{}, err
	}
	return payload, nil
}
