package database

import (
	"log"
	"strings"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/user"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	// Registers the cgo-free "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the schema, including the composite unique
// indexes the membership toggles rely on for race-safe inserts.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.Follow{},
		&catalog.Ingredient{},
		&catalog.Tag{},
		&recipe.Recipe{},
		&recipe.RecipeIngredient{},
		&recipe.Favorite{},
		&recipe.CartItem{},
	)
}
