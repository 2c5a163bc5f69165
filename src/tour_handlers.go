package main

import (
	"errors"
	"log"
	"net/http"
	"tbs/src/config"
	"tbs/src/db"
	"tbs/src/middlewares"
	"tbs/src/models"
	"tbs/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func apiTour(t models.Tour) types.APIResponseTour {
	return types.APIResponseTour{
		ID:                 t.ID,
		Name:               t.Name,
		Location:           t.Location,
		PricePerHead:       t.PricePerHead,
		ChildRate:          t.ChildRate,
		GSTPercent:         t.GSTPercent,
		Occupancy:          t.Occupancy,
		RemainingOccupancy: t.RemainingOccupancy,
		StartDate:          t.StartDate,
		Status:             t.Status,
	}
}

func tourHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tours", func(ctx *gin.Context) {
			var filters types.TourQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Tour{})
			if filters.Location != "" {
				q = q.Where("location = ?", filters.Location)
			}
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			}
			if filters.StartsAfter != "" {
				after, err := time.Parse(config.DATE_PARSE_FORMAT, filters.StartsAfter)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid starts_after"})
					return
				}
				q = q.Where("start_date > ?", after)
			}
			var tours []models.Tour
			if err := q.Order("start_date asc").Limit(100).Find(&tours).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			data := make([]types.APIResponseTour, 0, len(tours))
			for _, tour := range tours {
				data = append(data, apiTour(tour))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/tours/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var tour models.Tour
			if err := db.
				Model(&models.Tour{}).
				Where(&models.Tour{ID: params.ID}).
				First(&tour).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": apiTour(tour)})
		}).
		GET("/tours/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var tour struct {
				Occupancy          uint `json:"occupancy"`
				RemainingOccupancy uint `json:"remaining_occupancy"`
			}
			if err := db.
				Model(&models.Tour{}).
				Where("id = ?", params.ID).
				Select("occupancy", "remaining_occupancy").
				First(&tour).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tour})
		})
	return g
}

func tourAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/tours")
	admin.Use(middlewares.AdminOnly)
	admin.POST("", func(ctx *gin.Context) {
		var body types.CreateTourRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		startDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.StartDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		tour := models.Tour{
			Name:               body.Name,
			Location:           body.Location,
			Description:        body.Description,
			PricePerHead:       body.PricePerHead,
			ChildRate:          body.ChildRate,
			GSTPercent:         body.GSTPercent,
			Occupancy:          body.Occupancy,
			RemainingOccupancy: body.Occupancy,
			StartDate:          &startDate,
			Status:             string(types.TOUR_OPEN),
		}
		db := db.GetDb()
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&tour).Error
		}); err != nil {
			log.Printf("Could not create tour: %s\n", err.Error())
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": tour})
	})
	return admin
}
