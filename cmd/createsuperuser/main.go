// Command createsuperuser creates an active staff account with superuser rights.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/database"
	"github.com/Dias221467/Friend_Manager/internal/services"
	"github.com/Dias221467/Friend_Manager/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	email := flag.StringP("email", "e", "", "email of the new superuser")
	name := flag.StringP("name", "n", "", "display name of the new superuser")
	password := flag.StringP("password", "p", "", "password (defaults to $SUPERUSER_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SUPERUSER_PASSWORD")
	}
	if *email == "" || *name == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createsuperuser --email EMAIL --name NAME [--password PASSWORD]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)

	ctx := context.Background()
	stores, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer stores.Close(ctx)

	user, err := services.NewUserService(stores.Users).CreateSuperuser(ctx, *email, *name, *password)
	if err != nil {
		logger.Log.Errorf("Failed to create superuser: %v", err)
		stores.Close(ctx)
		os.Exit(1)
	}
	logger.Log.WithField("userID", user.ID).Infof("Superuser %s created", user.Email)
}
