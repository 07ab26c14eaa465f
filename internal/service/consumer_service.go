package service

import (
	"context"
	"encoding/json"

	"mindcare-be/internal/constant"
	"mindcare-be/internal/entity"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/repository/unitofwork"
	"mindcare-be/pkg/crisis"
	"mindcare-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const MessageTypeCrisisNotice = "crisis_notice"

// RealtimeDelivery pushes frames to a user's open websocket connections.
type RealtimeDelivery interface {
	Send(userID uuid.UUID, msgType string, data interface{})
}

// EventForwarder hands events to the cross-service bus.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type CrisisNotice struct {
	SessionId uuid.UUID         `json:"session_id"`
	Message   string            `json:"message"`
	Resources []crisis.Resource `json:"resources"`
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	delivery   RealtimeDelivery
	forwarder  EventForwarder
	alerter    ICrisisAlertService
	logger     logger.ILogger
}

// NewConsumerService records crisis events from the in-process bus. When
// forwarder is nil the care-team alert is sent directly through alerter.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	delivery RealtimeDelivery,
	forwarder EventForwarder,
	alerter ICrisisAlertService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		delivery:   delivery,
		forwarder:  forwarder,
		alerter:    alerter,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.CrisisDetected
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error(constant.ModuleCrisis, "Failed to unmarshal crisis event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}
	if event.EventId == uuid.Nil {
		event.EventId = uuid.New()
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	record := &entity.CrisisEvent{
		Id:             event.EventId,
		UserId:         event.UserId,
		SessionId:      event.SessionId,
		Message:        event.Message,
		MatchedPhrases: event.MatchedPhrases,
		CreatedAt:      event.OccurredAt,
	}
	if err := uow.CrisisEventRepository().Create(ctx, record); err != nil {
		cs.logger.Error(constant.ModuleCrisis, "Failed to record crisis event", map[string]interface{}{
			"event_id": event.EventId,
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.delivery != nil {
		cs.delivery.Send(event.UserId, MessageTypeCrisisNotice, CrisisNotice{
			SessionId: event.SessionId,
			Message:   crisis.Reply,
			Resources: crisis.Resources(),
		})
	}

	forwarded := false
	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.logger.Warn(constant.ModuleCrisis, "Failed to forward crisis event to NATS", map[string]interface{}{"error": err.Error()})
		} else {
			forwarded = true
		}
	}
	if !forwarded && cs.alerter != nil {
		if err := cs.alerter.Alert(ctx, event); err != nil {
			cs.logger.Error(constant.ModuleCrisis, "Failed to alert care team", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.logger.Info(constant.ModuleCrisis, "Crisis event processed", map[string]interface{}{
		"event_id":  event.EventId,
		"forwarded": forwarded,
	})
	msg.Ack()
}
