// Command migrate applies the embedded goose migrations.
//
// Usage:
//
//	migrate up
//	migrate down
//	migrate status
//	migrate to 3
package main

import (
	"context"
	"database/sql"
	"os"

	"orderflow/cmd"
	"orderflow/internal/adapters/out/postgres/migrations"

	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: migrate <up|down|status|version|redo|to VERSION>")
	}

	dbConfig, err := cmd.LoadDBConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	command := os.Args[1]

	if command == "to" {
		if len(os.Args) < 3 {
			log.Fatalf("usage: migrate to VERSION")
		}
		err = migrations.MigrateTo(ctx, db, os.Args[2])
	} else {
		err = migrations.Run(ctx, db, command, os.Args[2:]...)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Infof("Migration %s finished", command)
}
