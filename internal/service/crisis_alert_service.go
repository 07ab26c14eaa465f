package service

import (
	"context"
	"fmt"

	"mindcare-be/internal/constant"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/pkg/mailer"
	"mindcare-be/internal/repository/specification"
	"mindcare-be/internal/repository/unitofwork"
	"mindcare-be/pkg/events"
	pktNats "mindcare-be/pkg/nats"

	"github.com/google/uuid"
)

type ICrisisAlertService interface {
	Start()
	Alert(ctx context.Context, event events.CrisisDetected) error
}

type CrisisAlertService struct {
	uowFactory    unitofwork.RepositoryFactory
	subscriber    *pktNats.Subscriber
	emailService  mailer.IEmailService
	careTeamEmail string
	logger        logger.ILogger
}

func NewCrisisAlertService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	emailService mailer.IEmailService,
	careTeamEmail string,
	log logger.ILogger,
) *CrisisAlertService {
	return &CrisisAlertService{
		uowFactory:    uowFactory,
		subscriber:    sub,
		emailService:  emailService,
		careTeamEmail: careTeamEmail,
		logger:        log,
	}
}

// Start listens for crisis events on NATS with a durable consumer.
func (s *CrisisAlertService) Start() {
	if s.subscriber == nil {
		return
	}
	subject := pktNats.Subject(events.TypeCrisisDetected)
	if err := s.subscriber.Subscribe(subject, "crisis-alerts", s.handleEvent); err != nil {
		s.logger.Error(constant.ModuleCrisis, "Failed to start crisis alert subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info(constant.ModuleCrisis, "Crisis alert service listening on "+subject, nil)
}

func (s *CrisisAlertService) handleEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeCrisisDetected {
		return nil
	}
	return s.Alert(ctx, events.CrisisDetectedFromPayload(event.Payload()))
}

// Alert emails the care team and marks the recorded event as notified.
// It is a no-op when no care team address is configured.
func (s *CrisisAlertService) Alert(ctx context.Context, event events.CrisisDetected) error {
	if s.careTeamEmail == "" || s.emailService == nil {
		s.logger.Debug(constant.ModuleCrisis, "Care team email not configured, skipping alert", map[string]interface{}{"event_id": event.EventId})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	crisisTurns, err := uow.ConversationRepository().Count(ctx,
		specification.UserOwnedBy{UserID: event.UserId},
		specification.CrisisOnly{},
	)
	if err != nil {
		s.logger.Warn(constant.ModuleCrisis, "Failed to count crisis history", map[string]interface{}{"error": err.Error()})
	}

	err = s.emailService.SendCrisisAlert(s.careTeamEmail, mailer.CrisisAlert{
		Username:       event.Username,
		SessionId:      event.SessionId.String(),
		MatchedPhrases: event.MatchedPhrases,
		Message:        event.Message,
		OccurredAt:     event.OccurredAt,
		CrisisTurns:    crisisTurns,
	})
	if err != nil {
		return fmt.Errorf("send crisis alert: %w", err)
	}

	if event.EventId != uuid.Nil {
		if err := uow.CrisisEventRepository().MarkNotified(ctx, event.EventId); err != nil {
			return fmt.Errorf("mark crisis event notified: %w", err)
		}
	}

	s.logger.Info(constant.ModuleCrisis, "Care team alerted", map[string]interface{}{"event_id": event.EventId})
	return nil
}
