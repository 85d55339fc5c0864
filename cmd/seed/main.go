// Seeds the feature catalog for a demo form: manual and automatic pipelines
// for one audio question, pre-enabled for a couple of languages.
package main

import (
	"context"
	"log"
	"os"

	"ai-annotation-be/internal/constant"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/unitofwork"
	"ai-annotation-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	repo := uow.FeatureRepository()

	seeds := []entity.Feature{
		{
			QuestionXPath: "interview/audio_response",
			Action:        constant.ActionManualTranscription,
			Params:        []entity.FeatureParam{{Language: "en"}},
		},
		{
			QuestionXPath: "interview/audio_response",
			Action:        constant.ActionAutomaticTranscription,
			Params:        []entity.FeatureParam{{Language: "en"}},
		},
		{
			QuestionXPath: "interview/audio_response",
			Action:        constant.ActionManualTranslation,
			Params:        []entity.FeatureParam{{Language: "es"}, {Language: "fr"}},
		},
		{
			QuestionXPath: "interview/audio_response",
			Action:        constant.ActionAutomaticTranslation,
			Params:        []entity.FeatureParam{{Language: "es"}},
		},
	}

	for i := range seeds {
		existing, err := repo.FindByQuestionAction(ctx, seeds[i].QuestionXPath, seeds[i].Action)
		if err != nil {
			log.Fatalf("Error: lookup failed for %s: %v", seeds[i].Action, err)
		}
		if existing != nil {
			log.Printf("Skipping %s (already present)", seeds[i].Action)
			continue
		}
		if err := repo.Create(ctx, &seeds[i]); err != nil {
			log.Fatalf("Error: seed failed for %s: %v", seeds[i].Action, err)
		}
		log.Printf("Seeded feature %s / %s", seeds[i].QuestionXPath, seeds[i].Action)
	}

	log.Println("Seed complete.")
}
