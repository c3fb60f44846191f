// Command remote-migrate applies the remote schema to the Postgres database
// given by the client configuration (-d or remote_database_dsn).
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/buildinfo"
	"github.com/dmitrijs2005/antiquary/internal/client/config"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/repomanager"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if cfg.RemoteDatabaseDSN == "" {
		log.Fatal("remote database DSN is not set (use -d)")
	}

	db, err := repomanager.Open(cfg.RemoteDatabaseDSN)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	log.Println("remote schema is up to date")
}
