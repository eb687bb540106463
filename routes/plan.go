package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

var planEnergies = []string{"chill", "social", "hype"}

// GetPlans lists plans newest-first with optional energy/city filters.
// Public: no token required.
func GetPlans(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 20)
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset := ctx.URLParamIntDefault("offset", 0)
	if offset < 0 {
		offset = 0
	}

	query := storage.DB.Model(&models.Plan{}).Preload("Host")

	if energy := ctx.URLParam("energy"); energy != "" {
		query = query.Where("energy = ?", energy)
	}
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("LOWER(city) LIKE LOWER(?)", "%"+city+"%")
	}

	var total int64
	query.Count(&total)

	var plans []models.Plan
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&plans).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, planList(plans), offset/limit+1, limit, total)
}

// GetPlanByID returns one plan with its host and accepted attendee count.
func GetPlanByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var plan models.Plan
	if err := storage.DB.Preload("Host").First(&plan, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	resp := planSummary(plan)
	resp["success"] = true
	ctx.JSON(resp)
}

// CreatePlan inserts a plan for the authenticated host.
func CreatePlan(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var input PlanInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startsAt, timeErr := time.Parse(time.RFC3339, input.StartsAt)
	if timeErr != nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "startsAt must be an RFC3339 timestamp.", ctx)
		return
	}

	tags, marshalErr := json.Marshal(input.Tags)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	plan := models.Plan{
		HostID:       user.ID,
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		City:         input.City,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Energy:       input.Energy,
		PriceLevel:   input.PriceLevel,
		Tags:         tags,
		MaxAttendees: input.MaxAttendees,
		StartsAt:     startsAt,
	}

	if input.CoverImage != "" {
		plan.CoverURL = storage.UploadBase64Image(input.CoverImage, "plan_"+utils.GenerateShortToken(8))
	}

	if err := storage.DB.Create(&plan).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	awardHostBadgeIfDue(user.ID)

	storage.DB.Preload("Host").First(&plan, plan.ID)
	ctx.StatusCode(iris.StatusCreated)
	resp := planSummary(plan)
	resp["success"] = true
	ctx.JSON(resp)
}

// UpdatePlan mutates host-editable fields. Host only.
func UpdatePlan(ctx iris.Context) {
	plan := planForHost(ctx)
	if plan == nil {
		return
	}

	var input PlanUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Location != "" {
		updates["location"] = input.Location
	}
	if input.City != "" {
		updates["city"] = input.City
	}
	if input.Energy != "" {
		if !validEnergy(input.Energy) {
			utils.CreateError(iris.StatusBadRequest, "validation_error", "energy must be one of chill, social, hype.", ctx)
			return
		}
		updates["energy"] = input.Energy
	}
	if input.MaxAttendees > 0 {
		updates["max_attendees"] = input.MaxAttendees
	}
	if input.StartsAt != "" {
		startsAt, timeErr := time.Parse(time.RFC3339, input.StartsAt)
		if timeErr != nil {
			utils.CreateError(iris.StatusBadRequest, "validation_error", "startsAt must be an RFC3339 timestamp.", ctx)
			return
		}
		updates["starts_at"] = startsAt
	}
	if input.Tags != nil {
		tags, marshalErr := json.Marshal(input.Tags)
		if marshalErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		updates["tags"] = tags
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(plan).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	storage.DB.Preload("Host").First(plan, plan.ID)
	resp := planSummary(*plan)
	resp["success"] = true
	ctx.JSON(resp)
}

// DeletePlan removes a plan and its dependents. Host only.
func DeletePlan(ctx iris.Context) {
	plan := planForHost(ctx)
	if plan == nil {
		return
	}

	if plan.CoverURL != "" {
		storage.DeleteImage(plan.CoverURL)
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PlanAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(plan).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// GetPlanAttendees lists the accepted members of a plan.
func GetPlanAttendees(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var plan models.Plan
	if err := storage.DB.First(&plan, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var attendees []models.PlanAttendee
	storage.DB.Where("plan_id = ? AND status = ?", id, "accepted").
		Preload("User").
		Order("responded_at ASC").
		Find(&attendees)

	out := make([]iris.Map, 0, len(attendees))
	for _, a := range attendees {
		out = append(out, iris.Map{
			"userID":    a.UserID,
			"firstName": a.User.FirstName,
			"lastName":  a.User.LastName,
			"avatarURL": a.User.AvatarURL,
			"joinedAt":  a.RespondedAt,
		})
	}

	ctx.JSON(iris.Map{"success": true, "attendees": out})
}

// planForHost loads the {id} plan and enforces that the requester hosts it.
func planForHost(ctx iris.Context) *models.Plan {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return nil
	}
	user := tok.(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return nil
	}

	var plan models.Plan
	if err := storage.DB.First(&plan, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	if plan.HostID != user.ID {
		utils.CreateForbidden(ctx)
		return nil
	}

	return &plan
}

func validEnergy(energy string) bool {
	for _, e := range planEnergies {
		if e == energy {
			return true
		}
	}
	return false
}

// planSummary is the explicit response DTO for a plan row plus its derived
// attendee count.
func planSummary(plan models.Plan) iris.Map {
	var attendeeCount int64
	storage.DB.Model(&models.PlanAttendee{}).
		Where("plan_id = ? AND status = ?", plan.ID, "accepted").
		Count(&attendeeCount)

	return iris.Map{
		"plan":          &plan,
		"attendeeCount": attendeeCount,
		"spotsLeft":     int64(plan.MaxAttendees) - attendeeCount,
	}
}

func planList(plans []models.Plan) []iris.Map {
	out := make([]iris.Map, 0, len(plans))
	for i := range plans {
		out = append(out, planSummary(plans[i]))
	}
	return out
}

// awardHostBadgeIfDue grants host_level_1 once a user has hosted five plans.
func awardHostBadgeIfDue(userID uint) {
	var hosted int64
	storage.DB.Model(&models.Plan{}).Where("host_id = ?", userID).Count(&hosted)
	if hosted < 5 {
		return
	}
	awardBadge(userID, "host_level_1")
}

type PlanInput struct {
	Title        string   `json:"title" validate:"required,max=120"`
	Description  string   `json:"description" validate:"required"`
	Location     string   `json:"location" validate:"required,max=256"`
	City         string   `json:"city" validate:"max=100"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Energy       string   `json:"energy" validate:"required,oneof=chill social hype"`
	PriceLevel   int      `json:"priceLevel" validate:"min=0,max=4"`
	Tags         []string `json:"tags"`
	MaxAttendees int      `json:"maxAttendees" validate:"required,gt=0"`
	StartsAt     string   `json:"startsAt" validate:"required"`
	CoverImage   string   `json:"coverImage"`
}

type PlanUpdateInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	City         string   `json:"city"`
	Energy       string   `json:"energy"`
	MaxAttendees int      `json:"maxAttendees"`
	StartsAt     string   `json:"startsAt"`
	Tags         []string `json:"tags"`
}
