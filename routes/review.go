package routes

import (
	"log"
	"net/http"
	"time"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type createReviewInput struct {
	SubjectID uint   `json:"subjectID" validate:"required"`
	PlanID    *uint  `json:"planID"`
	Body      string `json:"body" validate:"max=2000"`
	Stars     int    `json:"stars" validate:"required,min=1,max=5"`
}

// CreateUserReview posts a review about another user. A reviewer gets one
// review per subject.
func CreateUserReview(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	user := tok.(*utils.AccessToken)

	var input createReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.SubjectID == user.ID {
		utils.CreateError(iris.StatusBadRequest, "bad_request", "Cannot review yourself.", ctx)
		return
	}

	var subject models.User
	if err := storage.DB.First(&subject, input.SubjectID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var existing models.Review
	if err := storage.DB.Where("reviewer_id = ? AND subject_id = ?", user.ID, input.SubjectID).First(&existing).Error; err == nil {
		ctx.JSON(iris.Map{"success": false, "error": "already_reviewed"})
		return
	}

	review := models.Review{
		ReviewerID: user.ID,
		SubjectID:  input.SubjectID,
		PlanID:     input.PlanID,
		Body:       input.Body,
		Stars:      input.Stars,
		IsVisible:  true,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	awardBadge(user.ID, "first_review")

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "review": review})
}

// GetUserReviews lists the visible reviews written about a user.
func GetUserReviews(ctx iris.Context) {
	subjectID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var reviews []models.Review
	storage.DB.Where("subject_id = ? AND is_visible = ?", subjectID, true).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews)

	items := make([]iris.Map, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, iris.Map{
			"id":        r.ID,
			"body":      r.Body,
			"stars":     r.Stars,
			"planID":    r.PlanID,
			"createdAt": r.CreatedAt,
			"reviewer": iris.Map{
				"id":        r.Reviewer.ID,
				"firstName": r.Reviewer.FirstName,
				"lastName":  r.Reviewer.LastName,
				"avatarURL": r.Reviewer.AvatarURL,
			},
		})
	}

	ctx.JSON(iris.Map{"success": true, "reviews": items})
}

// badgeCatalog seeds the names shown for badges awarded by code.
var badgeCatalog = map[string]models.Badge{
	"host_level_1": {Code: "host_level_1", Name: "Seasoned Host", Description: "Hosted five plans."},
	"first_review": {Code: "first_review", Name: "First Impressions", Description: "Wrote a first review."},
}

// awardBadge gives a user the badge with the given code, creating the catalog
// row on first use. Awarding an already-held badge is a no-op.
func awardBadge(userID uint, code string) {
	seed, ok := badgeCatalog[code]
	if !ok {
		seed = models.Badge{Code: code, Name: code}
	}

	var badge models.Badge
	if err := storage.DB.Where(models.Badge{Code: code}).Attrs(seed).FirstOrCreate(&badge).Error; err != nil {
		log.Printf("badge %s lookup failed: %v", code, err)
		return
	}

	var held models.UserBadge
	if err := storage.DB.Where("user_id = ? AND badge_id = ?", userID, badge.ID).First(&held).Error; err == nil {
		return
	}

	award := models.UserBadge{UserID: userID, BadgeID: badge.ID, AwardedAt: time.Now()}
	if err := storage.DB.Create(&award).Error; err != nil {
		log.Printf("badge %s award failed for user %d: %v", code, userID, err)
	}
}
