package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConversationStatus defines the handling state of a WhatsApp thread
type ConversationStatus string

const (
	ConversationOpen    ConversationStatus = "open"
	ConversationPending ConversationStatus = "pending"
	ConversationClosed  ConversationStatus = "closed"
)

// MessageDirection distinguishes customer messages from our replies
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// WhatsappConversation is one customer thread, keyed by phone number.
// AssignedToUserID nil means the bot handles the thread; a human agent
// takes over by claiming it. Status and assignment are independent axes.
type WhatsappConversation struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	UserPhone        string             `gorm:"uniqueIndex;not null" json:"user_phone"`
	Status           ConversationStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	AssignedToUserID *string            `gorm:"type:uuid;index" json:"assigned_to_user_id"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `gorm:"index" json:"updated_at"`

	// Relations
	Messages     []WhatsappMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	AssignedUser *UserAuth         `gorm:"foreignKey:AssignedToUserID" json:"assigned_user,omitempty"`
}

// TableName specifies the table name for WhatsappConversation model
func (WhatsappConversation) TableName() string {
	return "whatsapp_conversations"
}

// WhatsappMessage is one message in a conversation
type WhatsappMessage struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ConversationID uint             `gorm:"not null;index" json:"conversation_id"`
	Direction      MessageDirection `gorm:"type:varchar(10);not null" json:"direction"`
	Body           string           `gorm:"type:text" json:"body"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for WhatsappMessage model
func (WhatsappMessage) TableName() string {
	return "whatsapp_messages"
}

// LogStatus classifies a WhatsApp event log row
type LogStatus string

const (
	LogInfo    LogStatus = "info"
	LogWarning LogStatus = "warning"
	LogError   LogStatus = "error"
)

// WhatsappLog is an append-only diagnostic trail of bot and provider events
type WhatsappLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserPhone  string         `gorm:"index" json:"user_phone"`
	ProductID  *uint          `gorm:"index" json:"product_id,omitempty"`
	Action     string         `json:"action,omitempty"`
	Quantity   *int           `json:"quantity,omitempty"`
	AIResponse string         `gorm:"type:text" json:"ai_response"`
	ImageURL   string         `json:"image_url,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Status     LogStatus      `gorm:"type:varchar(10);default:'info';index" json:"status"`
	Meta       datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for WhatsappLog model
func (WhatsappLog) TableName() string {
	return "whatsapp_logs"
}
