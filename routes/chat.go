package routes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nightplans-server/models"
	"nightplans-server/services"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

const typingTTL = 5 * time.Second

type startDirectChatInput struct {
	UserID uint `json:"userID" validate:"required"`
}

type sendMessageInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// StartDirectChat returns the existing direct chat between the caller and the
// target user, or creates one. Calling it twice (in either order) yields the
// same chat.
func StartDirectChat(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var input startDirectChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.UserID == user.ID {
		utils.CreateError(iris.StatusBadRequest, "bad_request", "Cannot start a chat with yourself.", ctx)
		return
	}

	var other models.User
	if err := storage.DB.First(&other, input.UserID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	// A direct chat both users belong to
	var chat models.Chat
	err := storage.DB.
		Joins("JOIN chat_members cm1 ON cm1.chat_id = chats.id AND cm1.user_id = ?", user.ID).
		Joins("JOIN chat_members cm2 ON cm2.chat_id = chats.id AND cm2.user_id = ?", input.UserID).
		Where("chats.type = ?", "direct").
		First(&chat).Error
	if err == nil {
		ctx.JSON(iris.Map{"success": true, "chatID": chat.ID, "created": false})
		return
	}

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		chat = models.Chat{Type: "direct", CreatedByID: user.ID}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		members := []models.ChatMember{
			{ChatID: chat.ID, UserID: user.ID},
			{ChatID: chat.ID, UserID: input.UserID},
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "chatID": chat.ID, "created": true})
}

// GetChats lists the caller's chats, most recently active first.
func GetChats(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var chats []models.Chat
	storage.DB.
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id AND chat_members.user_id = ?", user.ID).
		Preload("Members").
		Preload("Members.User").
		Preload("Plan").
		Order("last_message_at DESC NULLS LAST, chats.created_at DESC").
		Find(&chats)

	items := make([]iris.Map, 0, len(chats))
	for i := range chats {
		items = append(items, chatSummary(&chats[i], user.ID))
	}

	ctx.JSON(iris.Map{"success": true, "chats": items})
}

// GetChatMeta returns one chat's header info for a member.
func GetChatMeta(ctx iris.Context) {
	user, chat := chatForMember(ctx)
	if chat == nil {
		return
	}

	resp := chatSummary(chat, user.ID)
	members := make([]iris.Map, 0, len(chat.Members))
	for _, m := range chat.Members {
		members = append(members, iris.Map{
			"id":        m.User.ID,
			"firstName": m.User.FirstName,
			"lastName":  m.User.LastName,
			"avatarURL": m.User.AvatarURL,
		})
	}
	resp["members"] = members
	resp["success"] = true
	ctx.JSON(resp)
}

// GetChatMessages returns a chat's messages oldest first, flagging the
// caller's own messages.
func GetChatMessages(ctx iris.Context) {
	user, chat := chatForMember(ctx)
	if chat == nil {
		return
	}

	var messages []models.Message
	storage.DB.Where("chat_id = ?", chat.ID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages)

	items := make([]iris.Map, 0, len(messages))
	for _, m := range messages {
		items = append(items, iris.Map{
			"id":            m.ID,
			"content":       m.Content,
			"createdAt":     m.CreatedAt,
			"senderID":      m.SenderID,
			"senderName":    m.Sender.FirstName + " " + m.Sender.LastName,
			"isCurrentUser": m.SenderID == user.ID,
		})
	}

	ctx.JSON(iris.Map{"success": true, "messages": items})
}

// SendChatMessage inserts the message and updates the chat's last-message
// columns in one transaction, then pushes to the other members.
func SendChatMessage(ctx iris.Context) {
	user, chat := chatForMember(ctx)
	if chat == nil {
		return
	}

	var input sendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		utils.CreateError(iris.StatusBadRequest, "bad_request", "Message cannot be empty.", ctx)
		return
	}

	message := models.Message{ChatID: chat.ID, SenderID: user.ID, Content: input.Content}
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", chat.ID).Updates(map[string]interface{}{
			"last_message_text": input.Content,
			"last_message_at":   message.CreatedAt,
		}).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var sender models.User
	storage.DB.First(&sender, user.ID)
	services.NotificationServiceInstance.NotifyNewMessage(
		*chat, user.ID, sender.FirstName+" "+sender.LastName, input.Content)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": iris.Map{
		"id":            message.ID,
		"content":       message.Content,
		"createdAt":     message.CreatedAt,
		"senderID":      message.SenderID,
		"isCurrentUser": true,
	}})
}

// Typing marks the caller as typing in a chat for a few seconds.
func Typing(ctx iris.Context) {
	user, chat := chatForMember(ctx)
	if chat == nil {
		return
	}

	key := typingKey(chat.ID, user.ID)
	if err := storage.Redis.Set(context.Background(), key, "1", typingTTL).Err(); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

// ListTyping returns the other members currently typing in a chat.
func ListTyping(ctx iris.Context) {
	user, chat := chatForMember(ctx)
	if chat == nil {
		return
	}

	typing := []uint{}
	for _, m := range chat.Members {
		if m.UserID == user.ID {
			continue
		}
		exists, err := storage.Redis.Exists(context.Background(), typingKey(chat.ID, m.UserID)).Result()
		if err == nil && exists > 0 {
			typing = append(typing, m.UserID)
		}
	}

	ctx.JSON(iris.Map{"success": true, "typing": typing})
}

func typingKey(chatID, userID uint) string {
	return fmt.Sprintf("typing:chat:%d:user:%d", chatID, userID)
}

// chatForMember loads the chat from the {id} param and checks the caller is a
// member. It writes the error response itself when returning nil.
func chatForMember(ctx iris.Context) (*utils.AccessToken, *models.Chat) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return nil, nil
	}
	user := tok.(*utils.AccessToken)

	chatID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return nil, nil
	}

	var chat models.Chat
	if err := storage.DB.Preload("Members").Preload("Members.User").Preload("Plan").First(&chat, chatID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil
	}

	for _, m := range chat.Members {
		if m.UserID == user.ID {
			return user, &chat
		}
	}

	utils.CreateForbidden(ctx)
	return nil, nil
}

// chatSummary renders the inbox row for one chat from the caller's side:
// direct chats take the other member's name and avatar, plan chats the plan's
// title and cover.
func chatSummary(chat *models.Chat, viewerID uint) iris.Map {
	title := ""
	subtitle := ""
	avatarURL := ""

	if chat.Type == "plan" && chat.Plan != nil {
		title = chat.Plan.Title
		subtitle = chat.Plan.City
		avatarURL = chat.Plan.CoverURL
	} else {
		for _, m := range chat.Members {
			if m.UserID != viewerID {
				title = m.User.FirstName + " " + m.User.LastName
				subtitle = m.User.City
				avatarURL = m.User.AvatarURL
				break
			}
		}
	}

	return iris.Map{
		"id":              chat.ID,
		"type":            chat.Type,
		"planID":          chat.PlanID,
		"title":           title,
		"subtitle":        subtitle,
		"avatarURL":       avatarURL,
		"lastMessageText": chat.LastMessageText,
		"lastMessageAt":   chat.LastMessageAt,
		"memberCount":     len(chat.Members),
	}
}
