package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"learnhub/config"
	"learnhub/database"
	"learnhub/logger"
	"learnhub/routers"
	"learnhub/services/verifycode"
	"learnhub/utils"
)

func main() {
	cfg := config.LoadConfig()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.ConnectDb(cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to the database", "error", err)
	}

	mailer := utils.NewMailer(cfg, appLog)
	codes := verifycode.New(db, utils.CodeMailer{Mailer: mailer}, appLog, verifycode.OptionsFromConfig(cfg))

	sweeper, err := verifycode.StartSweeper(codes, verifycode.SweepSchedule)
	if err != nil {
		appLog.Fatal("Failed to start verification code sweeper", "error", err)
	}

	app := routers.NewApp(routers.Deps{
		DB:     db,
		Config: cfg,
		Log:    appLog,
		Mailer: mailer,
		Codes:  codes,
		Images: utils.NewImageStore(cfg, appLog),
	}, routers.Options{AccessLog: true, UploadDir: cfg.UploadDir})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		appLog.Info("Shutting down...")
		<-sweeper.Stop().Done()
		if err := app.Shutdown(); err != nil {
			appLog.Error("Server shutdown failed", "error", err)
		}
	}()

	appLog.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Fatal("Server stopped", "error", err)
	}
}
