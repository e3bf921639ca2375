package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/repository"
)

var (
	clearExisting = flag.Bool("clear", false, "Delete events without bookings before seeding")
	dryRun        = flag.Bool("dry-run", false, "Show what would be inserted without making changes")
)

type eventWriter interface {
	Create(ctx context.Context, event *models.Event) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Seeder inserts the demo event programme
type Seeder struct {
	events eventWriter
	dryRun bool
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting event seeder...", "dry_run", *dryRun, "clear", *clearExisting)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	seeder := &Seeder{events: repository.NewEventRepository(db), dryRun: *dryRun}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *clearExisting {
		if err := seeder.Clear(ctx); err != nil {
			logger.Fatal("Failed to clear events", "error", err)
		}
	}

	n, err := seeder.Seed(ctx, demoEvents(time.Now()))
	if err != nil {
		logger.Fatal("Failed to seed events", "error", err)
	}

	slog.Info("Event seeding completed successfully!", "inserted", n)
}

// Clear removes events that nobody has booked
func (s *Seeder) Clear(ctx context.Context) error {
	if s.dryRun {
		slog.Info("Dry run: would delete events without bookings")
		return nil
	}
	n, err := s.events.DeleteAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("Deleted events", "count", n)
	return nil
}

// Seed inserts the given events and returns how many were written
func (s *Seeder) Seed(ctx context.Context, events []models.Event) (int, error) {
	inserted := 0
	for i := range events {
		e := &events[i]
		if s.dryRun {
			slog.Info("Dry run: would insert event", "title", e.Title, "date", e.Date, "capacity", e.Capacity, "price", e.Price)
			continue
		}
		if err := s.events.Create(ctx, e); err != nil {
			return inserted, fmt.Errorf("failed to insert %q: %w", e.Title, err)
		}
		inserted++
		slog.Info("Inserted event", "event_id", e.ID, "title", e.Title)
	}
	return inserted, nil
}

// demoEvents returns a month of weekend events starting from the next Saturday
func demoEvents(now time.Time) []models.Event {
	saturday := now.AddDate(0, 0, (int(time.Saturday)-int(now.Weekday())+7)%7)
	day := func(weeks, offset int) string {
		return saturday.AddDate(0, 0, weeks*7+offset).Format("2006-01-02")
	}

	return []models.Event{
		{
			Title:       "Beer Garden Social",
			Description: "Meet new people over a Maß under the chestnut trees.",
			Date:        day(0, 0),
			Time:        "18:00",
			Location:    "Chinesischer Turm, Englischer Garten",
			Price:       15,
			Capacity:    40,
			Image:       "/images/events/beer-garden.jpg",
			Category:    "social",
		},
		{
			Title:       "Sunrise Hike to Herzogstand",
			Description: "Early train from Munich Hbf, summit breakfast, back by lunch.",
			Date:        day(0, 1),
			Time:        "05:30",
			Location:    "München Hauptbahnhof",
			Price:       25,
			Capacity:    20,
			Image:       "/images/events/herzogstand.jpg",
			Category:    "outdoor",
		},
		{
			Title:       "Isar Picnic & Games",
			Description: "Bring a blanket, we bring the games.",
			Date:        day(1, 0),
			Time:        "14:00",
			Location:    "Flaucher, Isarauen",
			Price:       0,
			Capacity:    60,
			Image:       "/images/events/isar-picnic.jpg",
			Category:    "outdoor",
		},
		{
			Title:       "Pub Quiz Night",
			Description: "Teams of four, English-language questions, prizes for the top three.",
			Date:        day(1, 1),
			Time:        "19:30",
			Location:    "Glockenbachviertel",
			Price:       12.5,
			Capacity:    48,
			Image:       "/images/events/pub-quiz.jpg",
			Category:    "social",
		},
		{
			Title:       "Old Town Walking Tour",
			Description: "Marienplatz to Viktualienmarkt with a local guide.",
			Date:        day(2, 0),
			Time:        "11:00",
			Location:    "Marienplatz",
			Price:       18,
			Capacity:    25,
			Image:       "/images/events/old-town.jpg",
			Category:    "culture",
		},
	}
}
