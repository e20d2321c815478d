// Sends a one-word prompt to Gemini to verify the configured API key works
// before running a full analysis.
package main

import (
	"context"
	"log"
	"strings"

	"readily-backend/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set. Add it to your .env file or environment.")
	}

	log.Println("Found API key. Attempting to reach the Gemini API...")

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("❌ Failed to create Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(cfg.GeminiModel)
	log.Printf("Sending test prompt to %s...", cfg.GeminiModel)

	resp, err := model.GenerateContent(ctx, genai.Text("Hello"))
	if err != nil {
		log.Fatalf("❌ API call failed. This usually means the key is invalid or restricted: %v", err)
	}

	var reply strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				reply.WriteString(string(text))
			}
		}
	}

	if reply.Len() == 0 {
		log.Fatal("❌ Authentication succeeded, but the response was empty.")
	}

	log.Printf("✓ API key is working. Gemini responded: %s", strings.TrimSpace(reply.String()))
}
