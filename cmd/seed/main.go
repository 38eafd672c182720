// Command seed loads the ingredient reference book from a CSV file
// (name,measurement_unit per row) and creates a default tag set.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"

	"foodgram/internal/database"
	"foodgram/internal/domain/catalog"
	"foodgram/internal/repository"
)

var defaultTags = []struct {
	name  string
	color string
}{
	{"Breakfast", "#E26C2D"},
	{"Lunch", "#49B64E"},
	{"Dinner", "#8775D2"},
}

func main() {
	_ = godotenv.Load()

	csvPath := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ingredients := repository.NewIngredientRepository(db)
	tags := repository.NewTagRepository(db)

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	loaded, skipped := 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}

		ing := &catalog.Ingredient{Name: record[0], MeasurementUnit: record[1]}
		if err := ingredients.Create(ctx, ing); err != nil {
			// duplicates from re-runs are expected
			skipped++
			continue
		}
		loaded++
	}

	for _, t := range defaultTags {
		tag := &catalog.Tag{Name: t.name, Color: t.color, Slug: slug.Make(t.name)}
		if err := tags.Create(ctx, tag); err != nil {
			skipped++
			continue
		}
	}

	log.Printf("seed done: %d rows loaded, %d skipped", loaded, skipped)
}
