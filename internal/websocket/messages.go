package websocket

import (
	"time"

	"liqwatch/internal/models"
	"liqwatch/internal/monitor"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeHealthUpdate - свежая оценка аккаунта
	// Отправляется после каждого успешного цикла оценки
	MessageTypeHealthUpdate MessageType = "healthUpdate"

	// MessageTypeAlert - отправленный алерт
	// Отправляется только для событий, прошедших гейт
	MessageTypeAlert MessageType = "alert"
)

// BaseMessage - базовая структура всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// HealthUpdateMessage - сообщение со свежей оценкой аккаунта
type HealthUpdateMessage struct {
	BaseMessage
	Data *monitor.AccountReport `json:"data"`
}

// AlertMessage - сообщение об отправленном алерте
type AlertMessage struct {
	BaseMessage
	Data *models.AlertEvent `json:"data"`
}

// NewHealthUpdateMessage создает сообщение оценки
func NewHealthUpdateMessage(report *monitor.AccountReport) *HealthUpdateMessage {
	return &HealthUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeHealthUpdate,
			Timestamp: time.Now(),
		},
		Data: report,
	}
}

// NewAlertMessage создает сообщение алерта
func NewAlertMessage(event *models.AlertEvent) *AlertMessage {
	return &AlertMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeAlert,
			Timestamp: time.Now(),
		},
		Data: event,
	}
}
