//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fenilmodi00/sahayak-backend/config"
	"github.com/fenilmodi00/sahayak-backend/database"
	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/fenilmodi00/sahayak-backend/shared"
)

func main() {
	fmt.Printf("🏥 Sahayak Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthScore := 0
	totalTests := 4

	// Test 1: API server
	fmt.Print("🌐 API server: ")
	baseURL := "http://localhost:" + cfg.ServerPort
	if len(os.Args) > 1 {
		baseURL = strings.TrimSuffix(os.Args[1], "/")
	}
	if status, err := probe(ctx, baseURL+"/health"); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%s)\n", status)
		healthScore++
	}

	// Test 2: Database
	fmt.Print("🗄️  Database: ")
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		defer database.Close()
		if err := database.ValidateSchema(ctx); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Println("✅ OK")
			healthScore++
		}
	}

	// Test 3: Stored schemes
	fmt.Print("📊 Stored schemes: ")
	if database.DB == nil {
		fmt.Println("❌ SKIPPED (no database)")
	} else if schemes, err := services.NewSchemeService(database.DB).ListSchemes(ctx, services.MaxSchemeListLimit); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%d schemes)\n", len(schemes))
		healthScore++
	}

	// Test 4: Gemini
	fmt.Print("🤖 Gemini: ")
	gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiChatModel, cfg.GetLLMTimeout(), shared.NewServiceMetrics("health_check"))
	if err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		defer gemini.Close()
		if reply, err := gemini.GenerateText(ctx, "Reply with the single word OK."); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%q)\n", services.TruncateRunes(strings.TrimSpace(reply), 20))
			healthScore++
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Health score: %d/%d\n", healthScore, totalTests)
	if healthScore < totalTests {
		os.Exit(1)
	}
}

func probe(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
	}
	return fmt.Sprintf("status=%s database=%s", body.Status, body.Database), nil
}
