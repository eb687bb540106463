package routes

import (
	"net/http"
	"time"

	"nightplans-server/models"
	"nightplans-server/services"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type joinPlanInput struct {
	Message string `json:"message"`
}

// RequestToJoinPlan creates a pending attendee row and notifies the host.
func RequestToJoinPlan(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	planID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input joinPlanInput
	ctx.ReadJSON(&input)

	var plan models.Plan
	if err := storage.DB.Preload("Host").First(&plan, planID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if plan.HostID == user.ID {
		utils.CreateError(iris.StatusBadRequest, "bad_request", "You host this plan.", ctx)
		return
	}

	// One request per user per plan, whatever its status
	var existing models.PlanAttendee
	if err := storage.DB.Where("plan_id = ? AND user_id = ?", planID, user.ID).First(&existing).Error; err == nil {
		ctx.JSON(iris.Map{"success": false, "error": "already_requested"})
		return
	}

	var accepted int64
	storage.DB.Model(&models.PlanAttendee{}).
		Where("plan_id = ? AND status = ?", planID, "accepted").
		Count(&accepted)
	if accepted >= int64(plan.MaxAttendees) {
		ctx.JSON(iris.Map{"success": false, "error": "plan_full"})
		return
	}

	request := models.PlanAttendee{
		PlanID:  planID,
		UserID:  user.ID,
		Status:  "pending",
		Message: input.Message,
	}
	if err := storage.DB.Create(&request).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var requester models.User
	storage.DB.First(&requester, user.ID)

	services.NotificationServiceInstance.NotifyJoinRequested(
		plan.HostID, user.ID, planID,
		requester.FirstName+" "+requester.LastName, plan.Title)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "request": request})
}

// RespondToJoinRequest lets the host accept or decline a pending request.
// Accepting re-checks capacity and adds the requester to the plan chat.
func RespondToJoinRequest(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	requestID, err := ctx.Params().GetUint("requestID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input struct {
		Action string `json:"action"` // accept, decline
	}
	if err := ctx.ReadJSON(&input); err != nil || (input.Action != "accept" && input.Action != "decline") {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var request models.PlanAttendee
	if err := storage.DB.Preload("Plan").Preload("User").First(&request, requestID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if request.Plan.HostID != user.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if request.Status != "pending" {
		ctx.JSON(iris.Map{"success": false, "error": "request_already_processed"})
		return
	}

	now := time.Now()
	accepted := input.Action == "accept"

	if accepted {
		var count int64
		storage.DB.Model(&models.PlanAttendee{}).
			Where("plan_id = ? AND status = ?", request.PlanID, "accepted").
			Count(&count)
		if count >= int64(request.Plan.MaxAttendees) {
			ctx.JSON(iris.Map{"success": false, "error": "plan_full"})
			return
		}
	}

	status := "declined"
	if accepted {
		status = "accepted"
	}
	updates := map[string]interface{}{
		"status":       status,
		"responded_at": &now,
	}
	if err := storage.DB.Model(&request).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if accepted {
		addUserToPlanChat(request.Plan, request.UserID)
	}

	services.NotificationServiceInstance.NotifyJoinResponded(
		request.UserID, user.ID, request.PlanID, request.Plan.Title, accepted)

	ctx.JSON(iris.Map{"success": true})
}

// GetMyJoinRequests returns the requester's own join requests.
func GetMyJoinRequests(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var requests []models.PlanAttendee
	storage.DB.Where("user_id = ?", user.ID).
		Preload("Plan").
		Preload("Plan.Host").
		Order("created_at DESC").
		Find(&requests)

	ctx.JSON(iris.Map{"success": true, "requests": requests})
}

// GetPlanJoinRequests returns pending requests for a plan (host only).
func GetPlanJoinRequests(ctx iris.Context) {
	plan := planForHost(ctx)
	if plan == nil {
		return
	}

	var requests []models.PlanAttendee
	storage.DB.Where("plan_id = ? AND status = ?", plan.ID, "pending").
		Preload("User").
		Order("created_at DESC").
		Find(&requests)

	ctx.JSON(iris.Map{"success": true, "requests": requests})
}

// addUserToPlanChat puts an accepted attendee in the plan's group chat,
// creating the chat with the host as first member on demand.
func addUserToPlanChat(plan models.Plan, userID uint) {
	var chat models.Chat
	err := storage.DB.Where("type = ? AND plan_id = ?", "plan", plan.ID).First(&chat).Error
	if err != nil {
		chat = models.Chat{Type: "plan", PlanID: &plan.ID, CreatedByID: plan.HostID}
		if err := storage.DB.Create(&chat).Error; err != nil {
			return
		}
		storage.DB.Create(&models.ChatMember{ChatID: chat.ID, UserID: plan.HostID})
	}

	var member models.ChatMember
	if err := storage.DB.Where("chat_id = ? AND user_id = ?", chat.ID, userID).First(&member).Error; err != nil {
		storage.DB.Create(&models.ChatMember{ChatID: chat.ID, UserID: userID})
	}
}
