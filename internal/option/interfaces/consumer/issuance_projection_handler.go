// Package consumer 消费发行生命周期事件，刷新查询侧读模型。
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/optionvault/internal/option/application"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

type IssuanceProjectionHandler struct {
	projector *application.IssuanceProjectionService
	logger    *slog.Logger
}

func NewIssuanceProjectionHandler(projector *application.IssuanceProjectionService, logger *slog.Logger) *IssuanceProjectionHandler {
	return &IssuanceProjectionHandler{projector: projector, logger: logger}
}

func (h *IssuanceProjectionHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case domain.IssuanceCreatedEventType,
		domain.OptionsBoughtEventType,
		domain.IssuanceCanceledEventType,
		domain.PremiumUpdatedEventType,
		domain.OptionsExercisedEventType,
		domain.CollateralReclaimedEventType:
		var payload struct {
			IssuanceID *int64 `json:"issuance_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal issuance event", "error", err)
			return err
		}
		if payload.IssuanceID == nil {
			return nil
		}
		return h.projector.Refresh(ctx, *payload.IssuanceID)
	default:
		h.logger.WarnContext(ctx, "unknown issuance event topic", "topic", msg.Topic)
		return nil
	}
}
