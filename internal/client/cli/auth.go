package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/mailvault/internal/client/api"
	"github.com/dmitrijs2005/mailvault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, name and password and registers a new account.
// The server returns an initial token pair, so a successful signup leaves
// the user logged in. The password is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.client.Signup(ctx, email, name, string(password))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and authenticates. The password is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Name)
	return nil
}

// Logout revokes the session server-side and always clears the local token
// record. The server call runs off the REPL goroutine and gets a bounded
// grace period; if it does not answer in time the session is dropped locally
// and the revocation finishes in the background.
func (a *App) Logout(ctx context.Context) error {
	task := api.Start(func() (struct{}, error) {
		return struct{}{}, a.client.Logout(ctx)
	})

	waitCtx, cancel := context.WithTimeout(ctx, a.logoutGrace)
	defer cancel()

	if _, err := task.Wait(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			if cerr := a.tokens.Clear(); cerr != nil {
				log.Println(cerr.Error())
			}
			fmt.Println("Logged out (server did not answer in time).")
			return nil
		}
		log.Println(err.Error())
		return err
	}

	fmt.Println("Logged out.")
	return nil
}
