package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/ninja813/NFT-marketplace/internal/store/migrations"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s up|down\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()

	db, err := store.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	m, err := migrations.New(db.GetDB().DB)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		err = migrations.Up(m)
	case "down":
		err = migrations.Down(m)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", flag.Arg(0), err)
	}

	entry := log.WithField("direction", flag.Arg(0))
	if version, dirty, err := m.Version(); err == nil {
		entry = entry.WithField("version", version).WithField("dirty", dirty)
	}
	entry.Info("Migration complete")
}
