package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/storage/database/mongo"
)

const usage = `Usage: admin COMMAND

Commands:
  addadmin    register a new Admin account
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	conf := core.NewConfig()

	db, err := mongodb.Open(conf)
	if err != nil {
		log.Fatalf("opening database: %+v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Printf("closing database: %+v", err)
		}
	}()

	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	schoolSvc := school.NewService(mongodb.NewSchoolRepository(db))
	adminSvc := admin.NewService(mongodb.NewAdminRepository(db), schoolSvc, nil /* mailSvc */, conf)

	switch cmd := os.Args[1]; cmd {
	case "addadmin":
		err = addAdmin(os.Args[2:], validate, adminSvc)
	default:
		err = errors.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
