package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitQuestAPI/handlers"
	"fitQuestAPI/internal/database"
	"fitQuestAPI/internal/media"
	"fitQuestAPI/internal/notification"
	"fitQuestAPI/internal/workers"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	mediaStore          media.Store
	userService         *services.UserService
	challengeService    *services.ChallengeService
	uploadService       *services.UploadService
	leaderboardService  *services.LeaderboardService
	postService         *services.PostService
	socialService       *services.SocialService
	goalService         *services.GoalService
	trainerService      *services.TrainerService
	messageService      *services.MessageService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	dbPool, err = database.Connect(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Successfully connected to PostgreSQL")

	minioStore, err := media.NewMinioStore(media.MinioConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	})
	if err != nil {
		log.Fatal("Failed to create media store:", err)
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare media bucket:", err)
	}
	mediaStore = minioStore
	log.Println("Media store initialized successfully")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool, mediaStore)
	challengeService = services.NewChallengeService(dbPool, notificationService)
	uploadService = services.NewUploadService(dbPool, mediaStore, notificationService)
	leaderboardService = services.NewLeaderboardService(dbPool)
	postService = services.NewPostService(dbPool, mediaStore)
	socialService = services.NewSocialService(dbPool)
	goalService = services.NewGoalService(dbPool)
	trainerService = services.NewTrainerService(dbPool)
	messageService = services.NewMessageService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, uploadService, leaderboardService)
	postHandler := handlers.NewPostHandler(postService)
	socialHandler := handlers.NewSocialHandler(socialService)
	goalHandler := handlers.NewGoalHandler(goalService)
	trainerHandler := handlers.NewTrainerHandler(trainerService, messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	reconcilerCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()

	reconciler := workers.NewChallengeReconciler(challengeService)
	reconciler.Start(reconcilerCtx)
	defer reconciler.Stop()

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "fitquest-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	api.HandleFunc("/trainers", trainerHandler.ListTrainers).Methods("GET")
	api.HandleFunc("/trainers/{id}", trainerHandler.GetTrainer).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/check-in", userHandler.CheckIn).Methods("POST")
	protected.HandleFunc("/user/achievements", userHandler.GetAchievements).Methods("GET")
	protected.HandleFunc("/user/completed-challenges", userHandler.GetCompletedChallenges).Methods("GET")
	protected.HandleFunc("/user/joined-challenges", userHandler.GetJoinedChallenges).Methods("GET")
	protected.HandleFunc("/users/{id}", userHandler.GetPublicProfile).Methods("GET")
	protected.HandleFunc("/users/{id}/posts", postHandler.GetUserPosts).Methods("GET")
	protected.HandleFunc("/users/{id}/following", socialHandler.GetFollowing).Methods("GET")
	protected.HandleFunc("/users/{id}/followers", socialHandler.GetFollowers).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.UpdateChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{id}", challengeHandler.DeleteChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/join", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/upload", challengeHandler.UploadProof).Methods("POST")
	protected.HandleFunc("/challenges/{id}/leaderboard", challengeHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	protected.HandleFunc("/posts/feed", postHandler.GetFeed).Methods("GET")

	protected.HandleFunc("/follow", socialHandler.Follow).Methods("POST")
	protected.HandleFunc("/follow/{id}", socialHandler.Unfollow).Methods("DELETE")

	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals", goalHandler.ListGoals).Methods("GET")
	protected.HandleFunc("/goals/{id}", goalHandler.GetGoal).Methods("GET")
	protected.HandleFunc("/goals/{id}", goalHandler.UpdateGoal).Methods("PUT")
	protected.HandleFunc("/goals/{id}", goalHandler.DeleteGoal).Methods("DELETE")

	protected.HandleFunc("/trainers", trainerHandler.CreateTrainer).Methods("POST")
	protected.HandleFunc("/trainers/{id}", trainerHandler.UpdateTrainer).Methods("PUT")
	protected.HandleFunc("/trainers/{id}", trainerHandler.DeleteTrainer).Methods("DELETE")
	protected.HandleFunc("/trainers/{id}/purchase", trainerHandler.PurchaseTrainer).Methods("POST")
	protected.HandleFunc("/trainers/{id}/messages", trainerHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/trainers/{id}/messages", trainerHandler.GetMessages).Methods("GET")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDeviceToken).Methods("POST")
	protected.HandleFunc("/notifications/unregister-device", notificationHandler.UnregisterDeviceToken).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
