// Command seed runs the database seeder for the campus CMS.
package main

import (
	"flag"
	"log"

	"campushub/internal/config"
	"campushub/internal/database"
	"campushub/internal/seed"
)

func main() {
	numStudents := flag.Int("mahasiswa", 60, "Number of students to create")
	numWorks := flag.Int("karya", 40, "Number of student works to create")
	numNews := flag.Int("berita", 20, "Number of news articles to create")
	numEvents := flag.Int("agenda", 10, "Number of events to create")
	numPartnerships := flag.Int("kerjasama", 8, "Number of partnerships to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing for seeded passwords")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(db, seed.Options{
		NumStudents:     *numStudents,
		NumWorks:        *numWorks,
		NumNews:         *numNews,
		NumEvents:       *numEvents,
		NumPartnerships: *numPartnerships,
		ShouldClean:     *shouldClean && !*dryRun,
		Factory: seed.SeedOptions{
			DryRun:     *dryRun,
			SkipBcrypt: *fast,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
