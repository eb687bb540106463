package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"
)

// NotificationService persists notification rows and fans them out to the
// owner's registered push tokens. Push failures never fail the request that
// triggered the notification.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

func (ns *NotificationService) push(userID uint, title, body string, data map[string]string) {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("skipping push for user %d: %v", userID, err)
		return
	}

	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, data); err != nil {
			log.Printf("failed to send push to token %s: %v", token, err)
		}
	}
}

// Create stores a notification row and pushes it to the owner's devices.
func (ns *NotificationService) Create(n models.Notification) error {
	if err := storage.DB.Create(&n).Error; err != nil {
		return err
	}

	data := map[string]string{
		"type": n.Type,
		"id":   strconv.FormatUint(uint64(n.ID), 10),
	}
	if n.PlanID != nil {
		data["planId"] = strconv.FormatUint(uint64(*n.PlanID), 10)
	}
	if n.SenderID != nil {
		data["senderId"] = strconv.FormatUint(uint64(*n.SenderID), 10)
	}

	ns.push(n.UserID, n.Title, n.Message, data)
	return nil
}

// NotifyJoinRequested tells a host someone wants in on their plan.
func (ns *NotificationService) NotifyJoinRequested(hostID, requesterID, planID uint, requesterName, planTitle string) error {
	return ns.Create(models.Notification{
		UserID:   hostID,
		SenderID: &requesterID,
		PlanID:   &planID,
		Type:     "join_request",
		Title:    "New join request",
		Message:  requesterName + " wants to join \"" + planTitle + "\"",
	})
}

// NotifyJoinResponded tells a requester the host's decision.
func (ns *NotificationService) NotifyJoinResponded(requesterID, hostID, planID uint, planTitle string, accepted bool) error {
	n := models.Notification{
		UserID:   requesterID,
		SenderID: &hostID,
		PlanID:   &planID,
	}
	if accepted {
		n.Type = "join_accepted"
		n.Title = "You're in!"
		n.Message = "Your request to join \"" + planTitle + "\" was accepted"
	} else {
		n.Type = "join_declined"
		n.Title = "Request declined"
		n.Message = "Your request to join \"" + planTitle + "\" was declined"
	}
	return ns.Create(n)
}

// NotifyNewMessage pings every other chat member about a new message.
// Push only: chat traffic does not clutter the notifications list.
func (ns *NotificationService) NotifyNewMessage(chat models.Chat, senderID uint, senderName, preview string) {
	data := map[string]string{
		"type":   "new_message",
		"chatId": strconv.FormatUint(uint64(chat.ID), 10),
	}
	for _, m := range chat.Members {
		if m.UserID == senderID {
			continue
		}
		ns.push(m.UserID, senderName, preview, data)
	}
}

// Global notification service instance
var NotificationServiceInstance = NewNotificationService()
