package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"tbs/src/boot"
	"tbs/src/config"
	"tbs/src/middlewares"
	"tbs/src/utils"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// tourdate accepts a calendar date that is not in the past.
var tourDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return !datetime.Before(time.Now().Truncate(24 * time.Hour))
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("tourdate", tourDateValidatorFunc)
	}
}

func initLogger() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(logDir, "api.log"),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()
	if utils.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	boot.InitDb()
	boot.InitScheduler()
	go boot.InitBroker()

	router := setupRouter()

	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOrigins = []string{os.Getenv("APP_HOST")}
		router.Use(cors.New(cc))
	}

	registerValidators()

	router = maintenanceModeMiddleware(router)

	guestAuthRoutes(router)
	razorpayWebhookRoute(router)

	apiv1 := apiv1Group(router)
	tourHandlers(apiv1)

	protected := apiv1Group(router)
	protected.Use(middlewares.AuthMiddleware)
	bookingHandlers(protected)
	agentHandlers(protected)
	tourAdminHandlers(protected)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	defer boot.StopScheduler()
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server terminated: %s\n", err.Error())
	}
}
