package services

import (
	"encoding/json"
	"time"

	"auth_core_ms/config"

	"github.com/IBM/sarama"
	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"
)

type IEventService interface {
	PublishUserRegistered(userId uint, username string)
	PublishMfaEnabled(userId uint)
	PublishCredentialEnrolled(userId uint, credentialId string)
	PublishCredentialLoginSucceeded(userId uint, credentialId string)
	Close()
}

type authEvent struct {
	EventId      string `json:"eventId"`
	UserId       uint   `json:"userId"`
	Username     string `json:"username,omitempty"`
	CredentialId string `json:"credentialId,omitempty"`
	OccurredAt   string `json:"occurredAt"`
}

// EventService publishes auth lifecycle events. When Kafka is disabled in the
// config the producer is nil and every publish is a no-op.
type EventService struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewEventService(logger *zap.Logger) *EventService {
	if !config.Conf.Application.Kafka.Enabled {
		return &EventService{logger: logger}
	}
	producer, err := sarama.NewSyncProducer(config.Conf.Application.Kafka.Brokers, nil)
	if err != nil {
		logger.Warn("kafka producer unavailable, events disabled", zap.Error(err))
		return &EventService{logger: logger}
	}
	return &EventService{producer: producer, logger: logger}
}

func (s *EventService) publish(topic string, event *authEvent) {
	if s.producer == nil {
		return
	}
	event.EventId, _ = uuid.GenerateUUID()
	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode event", zap.String("topic", topic), zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.StringEncoder(data),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.logger.Error("failed to send event", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *EventService) PublishUserRegistered(userId uint, username string) {
	s.publish("UserRegisteredEvent", &authEvent{UserId: userId, Username: username})
}

func (s *EventService) PublishMfaEnabled(userId uint) {
	s.publish("MfaEnabledEvent", &authEvent{UserId: userId})
}

func (s *EventService) PublishCredentialEnrolled(userId uint, credentialId string) {
	s.publish("CredentialEnrolledEvent", &authEvent{UserId: userId, CredentialId: credentialId})
}

func (s *EventService) PublishCredentialLoginSucceeded(userId uint, credentialId string) {
	s.publish("CredentialLoginEvent", &authEvent{UserId: userId, CredentialId: credentialId})
}

func (s *EventService) Close() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}
