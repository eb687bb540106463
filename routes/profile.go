package routes

import (
	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
)

// GetUserProfile aggregates a user's public profile: counts, rating, recent
// plans, badges and visible reviews, in one response.
func GetUserProfile(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var hostedCount int64
	storage.DB.Model(&models.Plan{}).Where("host_id = ?", id).Count(&hostedCount)

	var joinedCount int64
	storage.DB.Model(&models.PlanAttendee{}).
		Where("user_id = ? AND status = ?", id, "accepted").
		Count(&joinedCount)

	var followerCount int64
	storage.DB.Model(&models.Connection{}).Where("followee_id = ?", id).Count(&followerCount)

	var followingCount int64
	storage.DB.Model(&models.Connection{}).Where("follower_id = ?", id).Count(&followingCount)

	var rating struct {
		Avg   float64
		Count int64
	}
	storage.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count").
		Where("subject_id = ? AND is_visible = ?", id, true).
		Scan(&rating)

	var recentPlans []models.Plan
	storage.DB.Where("host_id = ?", id).
		Order("created_at DESC").
		Limit(5).
		Find(&recentPlans)

	var awards []models.UserBadge
	storage.DB.Where("user_id = ?", id).
		Preload("Badge").
		Order("awarded_at DESC").
		Find(&awards)
	badges := make([]iris.Map, 0, len(awards))
	for _, a := range awards {
		badges = append(badges, iris.Map{
			"code":      a.Badge.Code,
			"name":      a.Badge.Name,
			"iconURL":   a.Badge.IconURL,
			"awardedAt": a.AwardedAt,
		})
	}

	var reviews []models.Review
	storage.DB.Where("subject_id = ? AND is_visible = ?", id, true).
		Preload("Reviewer").
		Order("created_at DESC").
		Limit(10).
		Find(&reviews)
	reviewItems := make([]iris.Map, 0, len(reviews))
	for _, r := range reviews {
		reviewItems = append(reviewItems, iris.Map{
			"id":        r.ID,
			"body":      r.Body,
			"stars":     r.Stars,
			"createdAt": r.CreatedAt,
			"reviewer": iris.Map{
				"id":        r.Reviewer.ID,
				"firstName": r.Reviewer.FirstName,
				"avatarURL": r.Reviewer.AvatarURL,
			},
		})
	}

	ctx.JSON(iris.Map{
		"success": true,
		"profile": iris.Map{
			"user": iris.Map{
				"id":        user.ID,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"avatarURL": user.AvatarURL,
				"bio":       user.Bio,
				"city":      user.City,
				"hostLevel": user.HostLevel,
			},
			"hostedCount":    hostedCount,
			"joinedCount":    joinedCount,
			"followerCount":  followerCount,
			"followingCount": followingCount,
			"rating":         iris.Map{"average": rating.Avg, "count": rating.Count},
			"recentPlans":    recentPlans,
			"badges":         badges,
			"reviews":        reviewItems,
		},
	})
}
