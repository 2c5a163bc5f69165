package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"tbs/src/config"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/payments"
	"tbs/src/types"
	"tbs/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func apiBooking(b models.Booking) types.APIResponseBooking {
	resp := types.APIResponseBooking{
		ID:            b.ID,
		BookingID:     b.BookingID,
		TourID:        b.TourID,
		Adults:        b.Adults,
		Children:      b.Children,
		BaseAmount:    b.BaseAmount,
		GSTAmount:     b.GSTAmount,
		TotalAmount:   b.TotalAmount,
		Currency:      b.Currency,
		PaymentStatus: b.PaymentStatus,
		Timestamps:    b.Timestamps,
	}
	if b.OrderID != nil {
		resp.OrderID = *b.OrderID
	}
	if b.Tour != nil {
		tour := apiTour(*b.Tour)
		resp.Tour = &tour
	}
	return resp
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			var orderId string
			err := db.Transaction(func(tx *gorm.DB) error {
				var tour models.Tour
				err := tx.
					Model(&models.Tour{}).
					Where("id = ?", body.TourID).
					First(&tour).
					Error
				if err != nil {
					return err
				}
				if tour.Status != string(types.TOUR_OPEN) {
					return errors.New("tour is not open for booking")
				}
				if tour.StartDate != nil && tour.StartDate.Before(time.Now()) {
					return errors.New("tour has already started")
				}
				seats := body.Adults + body.Children
				// Soft check only; the binding decrement happens at
				// payment confirmation.
				if tour.RemainingOccupancy < seats {
					return errors.New("not enough seats remaining")
				}
				if body.AgentID != nil {
					var agent models.Agent
					if err := tx.
						Model(&models.Agent{}).
						Where("id = ?", *body.AgentID).
						First(&agent).
						Error; err != nil {
						return errors.New("unknown agent")
					}
				}

				base := payments.BaseAmount(tour.PricePerHead, tour.ChildRate, body.Adults, body.Children)
				gst := payments.GSTAmount(base, tour.GSTPercent)
				booking = models.Booking{
					BookingID:     utils.NewBookingRef(),
					TourID:        tour.ID,
					UserID:        userId,
					AgentID:       body.AgentID,
					Adults:        body.Adults,
					Children:      body.Children,
					BaseAmount:    base,
					GSTAmount:     gst,
					TotalAmount:   base + gst,
					Currency:      "INR",
					PaymentStatus: string(types.PAYMENT_PENDING),
				}
				if err := tx.Create(&booking).Error; err != nil {
					return err
				}

				notes := map[string]any{
					"bookingID":           booking.BookingID,
					"tourID":              strconv.FormatUint(uint64(tour.ID), 10),
					"tourName":            tour.Name,
					"tourPricePerHead":    strconv.FormatInt(tour.PricePerHead, 10),
					"tourActualOccupancy": strconv.FormatUint(uint64(body.Adults), 10),
					"tourGivenOccupancy":  strconv.FormatUint(uint64(body.Children), 10),
					"GST":                 strconv.FormatUint(uint64(tour.GSTPercent), 10),
					"finalAmount":         strconv.FormatInt(booking.TotalAmount, 10),
				}
				if body.AgentID != nil {
					notes["agentID"] = strconv.FormatUint(uint64(*body.AgentID), 10)
				} else {
					notes["agentID"] = ""
				}
				if tour.StartDate != nil {
					notes["tourStartDate"] = tour.StartDate.Format(config.DATE_PARSE_FORMAT)
				}

				orderId, err = lib.CreateTourOrder(booking.TotalAmount, booking.Currency, booking.BookingID, notes)
				if err != nil {
					return fmt.Errorf("could not create payment order: %s", err.Error())
				}
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", booking.ID).
					Update("order_id", orderId).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not create booking: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{
				"booking_id":   booking.BookingID,
				"order_id":     orderId,
				"base_amount":  booking.BaseAmount,
				"gst_amount":   booking.GSTAmount,
				"total_amount": booking.TotalAmount,
				"currency":     booking.Currency,
			}})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Tour").
				Order("created_at desc").
				Limit(100).
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			data := make([]types.APIResponseBooking, 0, len(bookings))
			for _, booking := range bookings {
				data = append(data, apiBooking(booking))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID, UserID: userId}).
				Preload("Tour").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": apiBooking(booking)})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				// Only pending bookings cancel here; paid bookings go
				// through the refund desk, not this endpoint.
				res := tx.
					Model(&models.Booking{}).
					Where("id = ? AND user_id = ? AND payment_status = ?", params.ID, userId, types.PAYMENT_PENDING).
					Update("payment_status", types.PAYMENT_CANCELED)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return errors.New("booking is not cancellable")
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not cancel booking %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
