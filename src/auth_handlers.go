package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"tbs/src/db"
	"tbs/src/models"
	"tbs/src/types"
	"tbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	auth := apiv1.Group("/auth")
	auth.Use(func(ctx *gin.Context) {
		secret := os.Getenv("AUTH_SECRET")
		if secret != "" && ctx.GetHeader("x-secret") != secret {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	})
	auth.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := body.Role
			if role == "" {
				role = string(types.ROLE_CUSTOMER)
			}
			user := models.User{Email: body.Email, Name: body.Name, Role: role}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				if role == string(types.ROLE_AGENT) {
					if err := tx.Create(&models.Agent{UserID: user.ID}).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not register user: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not register user"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": user.ID}})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where(&models.User{Email: body.Email}).
				First(&user).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
			if err != nil {
				log.Printf("Error generating token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
		})
	return apiv1
}
