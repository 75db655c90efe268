package services

import (
	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/notifications"
	"github.com/google/uuid"
)

// Notifier pushes transient toast notifications to a user's open
// websocket connections. Delivery is best-effort: a toast for an
// offline user is dropped, never queued.
type Notifier interface {
	Success(userID int, title, message string)
	Error(userID int, title, message string)
	Warning(userID int, title, message string)
	Info(userID int, title, message string)
	AchievementUnlocked(userID int, achievement models.Achievement)
}

type hubNotifier struct {
	hub *notifications.Hub
}

func NewHubNotifier(hub *notifications.Hub) Notifier {
	return &hubNotifier{hub: hub}
}

func (n *hubNotifier) Success(userID int, title, message string) {
	n.push(userID, models.NotifySuccess, title, message)
}

func (n *hubNotifier) Error(userID int, title, message string) {
	n.push(userID, models.NotifyError, title, message)
}

func (n *hubNotifier) Warning(userID int, title, message string) {
	n.push(userID, models.NotifyWarning, title, message)
}

func (n *hubNotifier) Info(userID int, title, message string) {
	n.push(userID, models.NotifyInfo, title, message)
}

func (n *hubNotifier) AchievementUnlocked(userID int, achievement models.Achievement) {
	n.hub.SendToUser(userID, notifications.Envelope{
		Type:    "ACHIEVEMENT_UNLOCKED",
		Payload: achievement,
	})
	n.push(userID, models.NotifySuccess, "Achievement unlocked", achievement.Title)
}

func (n *hubNotifier) push(userID int, kind models.NotificationType, title, message string) {
	n.hub.SendToUser(userID, notifications.Envelope{
		Type: "NOTIFICATION",
		Payload: models.Notification{
			ID:         uuid.NewString(),
			Type:       kind,
			Title:      title,
			Message:    message,
			DurationMS: models.DefaultNotificationDuration,
		},
	})
}
