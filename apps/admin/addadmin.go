package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/shule/core/admin"
)

// addAdmin registers an account from the terminal. The password is read
// without echo and goes through the same validation path as the API.
func addAdmin(args []string, validate *validator.Validate, svc admin.Service) error {
	fs := flag.NewFlagSet("addadmin", flag.ExitOnError)
	name := fs.String("name", "", "full name (required)")
	email := fs.String("email", "", "email address (required)")
	schoolName := fs.String("school", "", "school name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pwd, err := readPassword()
	if err != nil {
		return err
	}

	na := admin.NewAdmin{
		Name:       *name,
		Email:      *email,
		Password:   pwd,
		SchoolName: *schoolName,
	}

	ctx := context.Background()
	if err = na.Validate(ctx, validate, svc); err != nil {
		return err
	}

	adm, err := svc.Register(ctx, na)
	if err != nil {
		return err
	}
	fmt.Printf("Admin created: %s <%s> (ID %s)\n", adm.Name, adm.Email, adm.ID)
	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	pwd, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password confirmation")
	}

	if string(pwd) != string(confirm) {
		fmt.Fprintln(os.Stderr, "Passwords do not match")
		return readPassword()
	}
	return string(pwd), nil
}
