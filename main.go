package main

import (
	"log"
	"net/http"

	"linkup_server/config"
	"linkup_server/middleware"
	"linkup_server/routes"
	"linkup_server/services"
	"linkup_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env in local development; environment wins in deployment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	s3Service := services.NewS3Service(cfg.S3Bucket)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	userService := &services.UserService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService, Blobs: s3Service}
	groupService := &services.GroupService{Dynamo: dynamoService}
	groupChatService := &services.GroupChatService{Dynamo: dynamoService, Blobs: s3Service}
	friendService := &services.FriendService{Dynamo: dynamoService, Users: userService}

	// Initialize the socket server and event hub
	hub := &socket.Hub{
		Users:      userService,
		Chats:      chatService,
		Groups:     groupService,
		GroupChats: groupChatService,
		Friends:    friendService,
	}
	socketServer := socket.NewSocketServer(tokenService, hub)
	broadcaster := &socket.ServerBroadcaster{Server: socketServer}
	hub.Broadcast = broadcaster

	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	auth := middleware.Auth(tokenService)
	routes.RegisterRoutes(r)
	routes.RegisterAuthRoutes(r, userService, tokenService, emailService, cfg.ClientURL)
	routes.RegisterUserRoutes(r, auth, userService, s3Service)
	routes.RegisterChatRoutes(r, auth, chatService, userService, s3Service, broadcaster)
	routes.RegisterGroupRoutes(r, auth, groupService, userService, broadcaster)
	routes.RegisterGroupChatRoutes(r, auth, groupChatService, groupService, s3Service, broadcaster)
	routes.RegisterFriendRoutes(r, auth, friendService, userService, broadcaster)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
