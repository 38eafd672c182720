package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	catalogmod "foodgram/internal/modules/catalog"
	recipemod "foodgram/internal/modules/recipe"
	"foodgram/internal/modules/users"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/pkg/media"
	"foodgram/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	tagRepo := repository.NewTagRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	cartRepo := repository.NewCartRepository(db)

	mediaStore := media.NewStore(os.Getenv("MEDIA_DIR"), "/media")

	j := jwtsvc.New(secret, 24*time.Hour)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	usersHandler := users.NewHandler(users.NewService(userRepo, followRepo, recipeRepo))
	catalogHandler := catalogmod.NewHandler(ingredientRepo, tagRepo)
	recipeHandler := recipemod.NewHandler(recipemod.NewService(
		recipeRepo,
		ingredientRepo,
		tagRepo,
		favoriteRepo,
		cartRepo,
		followRepo,
		mediaStore,
	))

	r := gin.Default()
	r.Static(mediaStore.StaticBase(), mediaStore.BaseDir())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		// reads: viewer identity is optional
		public := v1.Group("/")
		public.Use(middleware.Viewer(j))

		// writes and per-user views: token required
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		usersHandler.RegisterRoutes(public, protected)
		recipeHandler.RegisterRoutes(public, protected)
	}

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
