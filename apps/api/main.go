package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/school"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database/mongo"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run() error {
	conf := core.NewConfig()

	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(conf.Env == "PROD" || conf.Env == "QA")

	// database
	db, err := mongodb.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("closing database", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Env == "PROD" || conf.Env == "QA" {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	} else {
		mailSvc = emailsvc.NewConsoleService(conf)
	}

	// validation
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	schoolSvc := school.NewService(mongodb.NewSchoolRepository(db))
	adminSvc := admin.NewService(mongodb.NewAdminRepository(db), schoolSvc, mailSvc, conf)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AdminSvc:   adminSvc,
		SchoolSvc:  schoolSvc,
		Validate:   validate,
		Translator: translator,
	})

	logger.Info("starting API server on " + conf.Server.Addr)
	go server.Start()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")
	case sig := <-server.ShutdownSignal():
		logger.Info("starting shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			if cErr := server.Close(); cErr != nil {
				logger.Error("could not stop server", cErr)
			}
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
