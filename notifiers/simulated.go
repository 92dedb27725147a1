// Package notifiers holds the outbound channel transports. Real web push
// and email integrations are pending; the simulated sender stands in
// behind the same interface the dispatcher consumes, so swapping in a real
// transport is a wiring change only.
package notifiers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

type SimulatedSender struct {
	logger *slog.Logger
}

func NewSimulatedSender(logger *slog.Logger) *SimulatedSender {
	return &SimulatedSender{logger: logger}
}

type simulatedResponse struct {
	Simulated bool          `json:"simulated"`
	Channel   enums.Channel `json:"channel"`
	Target    string        `json:"target"`
	SentAt    time.Time     `json:"sentAt"`
}

// Send pretends to deliver and returns the payload a real transport would
// hand back. It never fails; failure policy (missing subscription, missing
// email, unconfigured channel) is decided by the dispatcher before the
// send step is reached.
func (s *SimulatedSender) Send(_ context.Context, schedule data.NotificationSchedule, target string) ([]byte, error) {
	s.logger.Info("simulated delivery",
		"schedule_id", schedule.ID,
		"channel", schedule.Channel,
		"user_id", schedule.UserID)

	response, err := json.Marshal(simulatedResponse{
		Simulated: true,
		Channel:   schedule.Channel,
		Target:    target,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}
