package config

import (
	"context"
	"errors"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp     *firebase.App
	FirestoreClient *firestore.Client
	MessagingClient *messaging.Client
)

// InitFirebase initializes the Firebase Admin SDK, the Firestore client
// and the FCM messaging client.
func InitFirebase() error {
	ctx := context.Background()

	credentialsPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "./serviceAccountKey.json"
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		log.Printf("Firebase credentials not found at %s", credentialsPath)
		return err
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return err
	}
	FirebaseApp = app

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("Error initializing Firestore: %v", err)
		return err
	}
	FirestoreClient = firestoreClient
	log.Println("Firestore client initialized")

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("Error initializing FCM messaging: %v", err)
		return err
	}
	MessagingClient = messagingClient
	log.Println("FCM messaging client initialized")

	return nil
}

// CloseFirebase closes Firebase connections
func CloseFirebase() {
	if FirestoreClient != nil {
		FirestoreClient.Close()
		log.Println("Firestore connection closed")
	}
}

// JWTSecret returns the token signing secret.
func JWTSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return []byte(secret), nil
}

// UploadDir is where voice attachments are stored.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// OpenAIKey returns the OpenAI API key, empty when analysis should fall
// back to the local analyzer.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
