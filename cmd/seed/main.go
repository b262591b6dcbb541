package main

import (
	"context"
	"flag"
	"log"

	"edurank/internal/config"
	"edurank/internal/database"
	"edurank/internal/models"
	"edurank/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Utility to seed the database with a demo organization, users and content.
// In a production system this would be done through the API or an admin
// interface.

func main() {
	var contentOnly = flag.Bool("content-only", false, "Only seed content items, skip users")
	flag.Parse()

	log.Println("🌱 EduRank Database Seeder")
	log.Println("==========================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	store := storage.NewGormAdapter(db)
	ctx := context.Background()

	orgID := uuid.New()
	if !*contentOnly {
		seedUsers(ctx, store, orgID)
	}
	seedContent(ctx, store)

	log.Println("✅ Seeding complete")
}

func seedUsers(ctx context.Context, store storage.Adapter, orgID uuid.UUID) {
	users := []models.User{
		{Email: "ada@demo.edu", DisplayName: "Ada", OrganizationID: orgID, IsActive: true},
		{Email: "grace@demo.edu", DisplayName: "Grace", OrganizationID: orgID, IsActive: true},
		{Email: "alan@demo.edu", DisplayName: "Alan", OrganizationID: orgID, IsActive: true},
	}
	for i := range users {
		if err := store.CreateUser(ctx, &users[i]); err != nil {
			log.Printf("⚠️  Skipping user %s: %v", users[i].Email, err)
			continue
		}
		log.Printf("👤 Seeded user %s", users[i].Email)
	}

	interests := []models.UserInterest{
		{UserID: users[0].ID, InterestArea: "linear algebra", Confidence: 0.9, Source: models.InterestSourceExplicit},
		{UserID: users[1].ID, InterestArea: "compilers", Confidence: 0.8, Source: models.InterestSourceExplicit},
	}
	for i := range interests {
		if err := store.CreateUserInterest(ctx, &interests[i]); err != nil {
			log.Printf("⚠️  Skipping interest %s: %v", interests[i].InterestArea, err)
		}
	}
}

func seedContent(ctx context.Context, store storage.Adapter) {
	items := []models.ContentItem{
		{
			Title:       "Introduction to Linear Algebra",
			Description: "Vectors, matrices and linear transformations for first-year students",
			ContentType: "COURSE",
			Tags:        pq.StringArray{"math", "linear-algebra"},
			ViewCount:   420,
		},
		{
			Title:       "Linear Algebra Problem Set",
			Description: "Practice problems covering vectors and matrices",
			ContentType: "ARTICLE",
			Tags:        pq.StringArray{"math", "linear-algebra", "exercises"},
			ViewCount:   180,
		},
		{
			Title:       "Building a Compiler from Scratch",
			Description: "Lexing, parsing and code generation walkthrough",
			ContentType: "VIDEO",
			Tags:        pq.StringArray{"compilers", "systems"},
			ViewCount:   260,
		},
		{
			Title:       "Study Skills for STEM Students",
			Description: "Evidence-based study techniques and spaced repetition",
			ContentType: "ARTICLE",
			Tags:        pq.StringArray{"study-skills"},
			ViewCount:   95,
		},
	}
	for i := range items {
		if err := store.CreateContentItem(ctx, &items[i]); err != nil {
			log.Printf("⚠️  Skipping content %q: %v", items[i].Title, err)
			continue
		}
		log.Printf("📚 Seeded content %q", items[i].Title)
	}
}
