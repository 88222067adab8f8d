package main

// Seeds an employee account. Useful for bootstrapping the first admin:
//
//	go run ./cmd/seedemployee -username admin -password change-me -role admin -org 7a3f...

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"brewpos/internal/config"
	"brewpos/internal/infra"
	"brewpos/internal/model"
)

func main() {
	username := flag.String("username", "", "login username (required)")
	password := flag.String("password", "", "initial password (required)")
	email := flag.String("email", "", "contact email")
	role := flag.String("role", "cashier", "cashier | supervisor | admin")
	org := flag.String("org", "", "organization uuid to bind (optional for admins)")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seedemployee -username X -password Y [-role admin] [-org UUID]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	if err := infra.RunMigrations(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrations: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}

	emp := &model.Employee{
		Username:     *username,
		PasswordHash: string(hash),
		Role:         *role,
		Active:       true,
	}
	if *email != "" {
		emp.Email = email
	}
	if *org != "" {
		orgID, err := uuid.Parse(*org)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid org uuid: %v\n", err)
			os.Exit(2)
		}
		emp.OrgID = &orgID
	}

	if err := db.Create(emp).Error; err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created employee %s (%s) id=%s\n", emp.Username, emp.Role, emp.ID)
}
