package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration instead of applying all")
	flag.Parse()

	cfg := config.Load()

	// Migrations use DIRECT_URL if set; poolers often reject the advisory lock.
	run, verb := db.Migrate, "applied"
	if *down {
		run, verb = db.Down, "rolled back one step"
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check that the runtime connection (DATABASE_URL) also opens.
	// DSNs are not printed to keep secrets out of logs.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations " + verb)
}
