package routes

import (
	"net/http"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// FollowUser makes the caller follow the user in the {id} param.
func FollowUser(ctx iris.Context) {
	user, targetID := connectionTarget(ctx)
	if user == nil {
		return
	}

	if targetID == user.ID {
		utils.CreateError(iris.StatusBadRequest, "bad_request", "Cannot follow yourself.", ctx)
		return
	}

	var target models.User
	if err := storage.DB.First(&target, targetID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var existing models.Connection
	if err := storage.DB.Where("follower_id = ? AND followee_id = ?", user.ID, targetID).First(&existing).Error; err == nil {
		ctx.JSON(iris.Map{"success": false, "error": "already_following"})
		return
	}

	connection := models.Connection{FollowerID: user.ID, FolloweeID: targetID}
	if err := storage.DB.Create(&connection).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true})
}

// UnfollowUser removes the caller's follow of the user in the {id} param.
func UnfollowUser(ctx iris.Context) {
	user, targetID := connectionTarget(ctx)
	if user == nil {
		return
	}

	res := storage.DB.Where("follower_id = ? AND followee_id = ?", user.ID, targetID).
		Delete(&models.Connection{})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// GetFollowers lists the users following the user in the {id} param.
func GetFollowers(ctx iris.Context) {
	user, targetID := connectionTarget(ctx)
	if user == nil {
		return
	}

	var followers []models.User
	storage.DB.
		Joins("JOIN connections ON connections.follower_id = users.id AND connections.followee_id = ?", targetID).
		Find(&followers)

	ctx.JSON(iris.Map{"success": true, "users": connectionList(followers)})
}

// GetFollowing lists the users the user in the {id} param follows.
func GetFollowing(ctx iris.Context) {
	user, targetID := connectionTarget(ctx)
	if user == nil {
		return
	}

	var following []models.User
	storage.DB.
		Joins("JOIN connections ON connections.followee_id = users.id AND connections.follower_id = ?", targetID).
		Find(&following)

	ctx.JSON(iris.Map{"success": true, "users": connectionList(following)})
}

func connectionTarget(ctx iris.Context) (*utils.AccessToken, uint) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return nil, 0
	}
	user := tok.(*utils.AccessToken)

	targetID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return nil, 0
	}

	return user, targetID
}

func connectionList(users []models.User) []iris.Map {
	items := make([]iris.Map, 0, len(users))
	for _, u := range users {
		items = append(items, iris.Map{
			"id":        u.ID,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"avatarURL": u.AvatarURL,
			"city":      u.City,
		})
	}
	return items
}
