package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dmitrijs2005/mailvault/internal/client/api"
	"github.com/dmitrijs2005/mailvault/internal/common"
)

func (a *App) promptConfigID(prompt string) (int64, error) {
	raw, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Println("Invalid id.")
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// List prints the account's configurations. App passwords are never shown
// in listings.
func (a *App) List(ctx context.Context) error {
	configs, err := a.client.Configurations(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(configs) == 0 {
		fmt.Println("No configurations yet.")
		return nil
	}

	for _, c := range configs {
		marker := " "
		if c.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %d  %s\n", marker, c.ID, c.Email)
	}
	return nil
}

// Show fetches one configuration and prints it including the app password.
func (a *App) Show(ctx context.Context) error {
	id, err := a.promptConfigID("Enter configuration id")
	if err != nil {
		return err
	}

	c, err := a.client.Configuration(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("id:           %d\n", c.ID)
	fmt.Printf("email:        %s\n", c.Email)
	fmt.Printf("app password: %s\n", c.AppPassword)
	fmt.Printf("active:       %v\n", c.IsActive)
	return nil
}

// Add creates a new configuration from interactive input.
func (a *App) Add(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter configuration email", os.Stdout)
	if err != nil {
		return err
	}

	appPassword, err := getPassword("Enter app password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(appPassword)

	active, err := getSimpleText(a.reader, "Make it active? (y/n)", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.client.CreateConfiguration(ctx, api.ConfigurationInput{
		Email:       email,
		AppPassword: string(appPassword),
		IsActive:    active == "y" || active == "yes",
	})
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Created configuration %d.\n", created.ID)
	return nil
}

// Update sends only the fields the user filled in; anything left empty
// keeps its stored value.
func (a *App) Update(ctx context.Context) error {
	id, err := a.promptConfigID("Enter configuration id")
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}

	appPassword, err := getPassword("Enter app password (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(appPassword)

	var in api.ConfigurationUpdate
	if email != "" {
		in.Email = &email
	}
	if len(appPassword) > 0 {
		pass := string(appPassword)
		in.AppPassword = &pass
	}

	updated, err := a.client.UpdateConfiguration(ctx, id, in)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Updated configuration %d.\n", updated.ID)
	return nil
}

// Delete removes a configuration.
func (a *App) Delete(ctx context.Context) error {
	id, err := a.promptConfigID("Enter configuration id")
	if err != nil {
		return err
	}

	if err := a.client.DeleteConfiguration(ctx, id); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Deleted configuration %d.\n", id)
	return nil
}

// Use marks a configuration as the active one; the server deactivates any
// other configuration of the account.
func (a *App) Use(ctx context.Context) error {
	id, err := a.promptConfigID("Enter configuration id")
	if err != nil {
		return err
	}

	used, err := a.client.UseConfiguration(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Configuration %d is now active.\n", used.ID)
	return nil
}
