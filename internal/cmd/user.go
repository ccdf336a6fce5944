package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/logging"
	"github.com/PauloHFS/embedsim/internal/services"
)

func RunCreateUser() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: create-user <email> <password>")
		os.Exit(1)
	}
	email := os.Args[2]
	password := os.Args[3]

	cfg, pool, err := openPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, pool.Write); err != nil {
		fmt.Printf("failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	user, err := services.NewUserService(pool).CreateUser(ctx, services.CreateUserInput{
		Email:    email,
		Password: password,
	})
	if errors.Is(err, services.ErrEmailTaken) {
		fmt.Printf("User %s already exists\n", email)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("failed to create user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("User %s created successfully (id %d)\n", user.Email, user.ID)
}
