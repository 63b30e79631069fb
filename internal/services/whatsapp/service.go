package whatsapp

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/warehub-io/warehub/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrConversationNotFound is returned when the conversation ID does not exist
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidStatus is returned for an unknown conversation status value
	ErrInvalidStatus = errors.New("invalid conversation status")

	// ErrEmptyMessage is returned for a reply with no body
	ErrEmptyMessage = errors.New("message body is required")
)

// EventSink receives domain events for live dashboards
type EventSink interface {
	Publish(event string, payload interface{})
}

// Responder drafts bot replies for unassigned conversations
type Responder interface {
	Reply(ctx context.Context, userPhone string, history []models.WhatsappMessage, inbound string) (reply string, confidence float64, err error)
}

// Service owns WhatsApp conversations, their assignment state and the
// bot/agent reply flow
type Service struct {
	db            *gorm.DB
	provider      Provider
	health        *Health
	responder     Responder // nil disables the auto-responder
	events        EventSink
	minConfidence float64
}

// NewService creates a new conversation service
func NewService(db *gorm.DB, provider Provider, health *Health, responder Responder, events EventSink, minConfidence float64) *Service {
	if provider == nil {
		provider = LogProvider{}
	}
	if health == nil {
		health = NewHealth()
	}
	return &Service{
		db:            db,
		provider:      provider,
		health:        health,
		responder:     responder,
		events:        events,
		minConfidence: minConfidence,
	}
}

// Health exposes the channel health tracker
func (s *Service) Health() *Health {
	return s.health
}

// ListConversations returns conversations, most recently active first
func (s *Service) ListConversations(ctx context.Context, status string) ([]models.WhatsappConversation, error) {
	q := s.db.WithContext(ctx).Model(&models.WhatsappConversation{}).Preload("AssignedUser")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.WhatsappConversation
	if err := q.Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Messages returns the ordered message history of a conversation
func (s *Service) Messages(ctx context.Context, conversationID uint) ([]models.WhatsappMessage, error) {
	if err := s.ensureExists(ctx, conversationID); err != nil {
		return nil, err
	}
	var messages []models.WhatsappMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Assign sets or clears the human agent on a conversation. userID nil
// releases the thread back to the bot; releasing an unassigned
// conversation is a no-op. Assignment is independent of status.
func (s *Service) Assign(ctx context.Context, conversationID uint, userID *string) (*models.WhatsappConversation, error) {
	var conv models.WhatsappConversation
	if err := s.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if userID == nil && conv.AssignedToUserID == nil {
		return &conv, nil
	}

	conv.AssignedToUserID = userID
	if err := s.db.WithContext(ctx).Model(&conv).Update("assigned_to_user_id", userID).Error; err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("conversation.updated", conv)
	}
	return &conv, nil
}

// SetStatus changes the conversation status. Any explicit transition is
// allowed; there is no automatic timeout.
func (s *Service) SetStatus(ctx context.Context, conversationID uint, status models.ConversationStatus) (*models.WhatsappConversation, error) {
	switch status {
	case models.ConversationOpen, models.ConversationPending, models.ConversationClosed:
	default:
		return nil, ErrInvalidStatus
	}

	var conv models.WhatsappConversation
	if err := s.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	conv.Status = status
	if err := s.db.WithContext(ctx).Model(&conv).Update("status", status).Error; err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("conversation.updated", conv)
	}
	return &conv, nil
}

// Reply appends an outbound message and relays it through the provider.
// The message is stored even when the relay fails, so an agent can see
// what was attempted; the failure feeds the health tracker.
func (s *Service) Reply(ctx context.Context, conversationID uint, body string) (*models.WhatsappMessage, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	var conv models.WhatsappConversation
	if err := s.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	message := models.WhatsappMessage{
		ConversationID: conversationID,
		Direction:      models.DirectionOutbound,
		Body:           body,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.provider.Send(ctx, conv.UserPhone, body); err != nil {
		s.health.RecordError(err)
		s.appendLog(ctx, models.WhatsappLog{
			UserPhone:  conv.UserPhone,
			Action:     "send",
			AIResponse: body,
			Status:     models.LogError,
		})
		log.Printf("⚠️  WhatsApp send failed for %s: %v", conv.UserPhone, err)
	} else {
		s.health.RecordSuccess()
	}

	if s.events != nil {
		s.events.Publish("conversation.updated", conv)
	}
	return &message, nil
}

// HandleInbound records a customer message, creating the conversation on
// first contact and reopening closed threads. Unassigned conversations
// are answered by the bot when the responder is confident enough;
// otherwise the thread is parked pending for a human.
func (s *Service) HandleInbound(ctx context.Context, userPhone, body string) (*models.WhatsappConversation, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	var conv models.WhatsappConversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_phone = ?", userPhone).First(&conv).Error
		if err == gorm.ErrRecordNotFound {
			conv = models.WhatsappConversation{
				UserPhone: userPhone,
				Status:    models.ConversationOpen,
			}
			if err := tx.Create(&conv).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if conv.Status == models.ConversationClosed {
			conv.Status = models.ConversationOpen
			if err := tx.Model(&conv).Update("status", conv.Status).Error; err != nil {
				return err
			}
		}

		message := models.WhatsappMessage{
			ConversationID: conv.ID,
			Direction:      models.DirectionInbound,
			Body:           body,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("conversation.updated", conv)
	}

	// Human has taken over: no bot handling
	if conv.AssignedToUserID != nil {
		return &conv, nil
	}

	if s.responder == nil {
		return &conv, nil
	}

	history, err := s.Messages(ctx, conv.ID)
	if err != nil {
		return &conv, nil
	}
	if n := len(history); n > 0 {
		// The inbound message itself is passed separately
		history = history[:n-1]
	}

	reply, confidence, err := s.responder.Reply(ctx, userPhone, history, body)
	if err != nil {
		s.appendLog(ctx, models.WhatsappLog{
			UserPhone:  userPhone,
			Action:     "bot_reply",
			AIResponse: err.Error(),
			Status:     models.LogError,
		})
		return &conv, nil
	}

	if confidence < s.minConfidence {
		// Low confidence: park for a human instead of guessing
		if _, err := s.SetStatus(ctx, conv.ID, models.ConversationPending); err != nil {
			return &conv, nil
		}
		s.appendLog(ctx, models.WhatsappLog{
			UserPhone:  userPhone,
			Action:     "bot_defer",
			AIResponse: reply,
			Confidence: &confidence,
			Status:     models.LogWarning,
		})
		return &conv, nil
	}

	if _, err := s.Reply(ctx, conv.ID, reply); err != nil {
		return &conv, nil
	}
	s.appendLog(ctx, models.WhatsappLog{
		UserPhone:  userPhone,
		Action:     "bot_reply",
		AIResponse: reply,
		Confidence: &confidence,
		Status:     models.LogInfo,
	})
	return &conv, nil
}

// Logs returns the event trail, newest first
func (s *Service) Logs(ctx context.Context, status string, limit int) ([]models.WhatsappLog, error) {
	if limit <= 0 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Model(&models.WhatsappLog{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var logs []models.WhatsappLog
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Service) appendLog(ctx context.Context, row models.WhatsappLog) {
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("⚠️  Failed to write whatsapp log: %v", err)
	}
}

func (s *Service) ensureExists(ctx context.Context, conversationID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WhatsappConversation{}).
		Where("id = ?", conversationID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	return nil
}
