package routes

import (
	"net/http"
	"time"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// GetNotifications returns the caller's notifications, newest first, paged.
func GetNotifications(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("perPage", 30)
	if perPage < 1 {
		perPage = 30
	}
	if perPage > 50 {
		perPage = 50
	}
	unreadOnly, _ := ctx.URLParamBool("unreadOnly")

	query := storage.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []models.Notification
	query.Preload("Sender").Preload("Plan").
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&notifications)

	utils.JSONPage(ctx, notifications, page, perPage, total)
}

// GetUnreadNotificationCount returns how many unread notifications the caller
// has, for badge rendering.
func GetUnreadNotificationCount(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var count int64
	storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&count)

	ctx.JSON(iris.Map{"success": true, "count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(ctx iris.Context) {
	_, notification := notificationForOwner(ctx)
	if notification == nil {
		return
	}

	if !notification.IsRead {
		now := time.Now()
		storage.DB.Model(notification).Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		})
	}

	ctx.JSON(iris.Map{"success": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller.
func MarkAllNotificationsRead(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	now := time.Now()
	res := storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "updated": res.RowsAffected})
}

// DeleteNotification removes one of the caller's notifications.
func DeleteNotification(ctx iris.Context) {
	_, notification := notificationForOwner(ctx)
	if notification == nil {
		return
	}

	if err := storage.DB.Delete(notification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// notificationForOwner loads the notification from the {id} param and checks
// it belongs to the caller. It writes the error response when returning nil.
func notificationForOwner(ctx iris.Context) (*utils.AccessToken, *models.Notification) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return nil, nil
	}
	user := tok.(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return nil, nil
	}

	var notification models.Notification
	if err := storage.DB.First(&notification, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil
	}

	if notification.UserID != user.ID {
		utils.CreateForbidden(ctx)
		return nil, nil
	}

	return user, &notification
}
