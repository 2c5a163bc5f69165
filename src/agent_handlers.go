package main

import (
	"errors"
	"net/http"
	"tbs/src/db"
	"tbs/src/models"
	"tbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func agentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/agents/:id/wallet", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var agent struct {
				WalletBalance int64 `json:"wallet_balance"`
			}
			if err := db.
				Model(&models.Agent{}).
				Where("id = ?", params.ID).
				Select("wallet_balance").
				First(&agent).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agent})
		}).
		GET("/agents/:id/commissions", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var commissions []models.Commission
			if err := db.
				Model(&models.Commission{}).
				Where(&models.Commission{AgentID: params.ID}).
				Preload("Booking").
				Order("created_at desc").
				Limit(100).
				Find(&commissions).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": commissions, "count": len(commissions)})
		})
	return g
}
