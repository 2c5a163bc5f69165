package boot

import (
	"log"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/types"
	"tbs/src/utils"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Agent{},
		&models.Tour{},
		&models.Booking{},
		&models.PaymentEvent{},
		&models.Commission{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(utils.WithSuffix("booking-payments"))
}

// InitScheduler closes tours whose start date has passed so they stop
// accepting checkouts. Payment state is never touched here; terminal
// transitions belong to the webhook reconciler alone.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(CloseStartedTours, 1*time.Hour)
	if err != nil {
		log.Printf("Error scheduling tour close job: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled tour close job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

func CloseStartedTours() {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Tour{}).
			Where("status = ? AND start_date < ?", types.TOUR_OPEN, time.Now()).
			Update("status", types.TOUR_CLOSED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Closed %d started tours\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while closing started tours: %s\n", err.Error())
	}
}
