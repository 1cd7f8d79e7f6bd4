package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiassessment "carboncredit/pkg/api/assessment"
	apiconfig "carboncredit/pkg/api/config"
	apiforecast "carboncredit/pkg/api/forecast"
	apiguidance "carboncredit/pkg/api/guidance"
	"carboncredit/pkg/api/health"
	"carboncredit/pkg/core/agent"
	"carboncredit/pkg/core/assessment"
	"carboncredit/pkg/core/catalog"
	"carboncredit/pkg/core/forecast"
	"carboncredit/pkg/core/guidance"
	"carboncredit/pkg/core/prompt"
	"carboncredit/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()
	ctx := context.Background()

	// Initialize Prompt Library
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to hardcoded prompts")
	}

	// Initialize manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Question catalog: built-in by default, overridable from an hjson file
	cat := catalog.Default()
	if path := os.Getenv("QUESTION_CATALOG"); path != "" {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			fmt.Printf("[FATAL] Failed to load question catalog %s: %v\n", path, err)
			os.Exit(1)
		}
		cat = loaded
		fmt.Printf("[CATALOG] Loaded %d questions from %s\n", cat.Len(), path)
	}

	// Session store: Postgres when DATABASE_URL is set, in-memory otherwise
	var sessions assessment.Store
	var dbPing func(context.Context) error
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[FATAL] Database init failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		sessions = store.NewSessionRepo()
		dbPing = store.Ping
		fmt.Println("[STORE] Using Postgres session store")
	} else {
		memStore := assessment.NewMemoryStore(assessment.DefaultSessionTTL)
		defer memStore.Close()
		sessions = memStore
		fmt.Println("[STORE] Using in-memory session store")
	}

	assessMgr := assessment.NewManager(cat, sessions)

	// Knowledge base: Gemini embeddings over a persistent chromem collection.
	// Degrades to nil guidance when the embedder cannot be configured.
	var guidanceSvc *guidance.Service
	embedder, err := guidance.NewGeminiEmbedder(ctx, "")
	if err != nil {
		fmt.Printf("[WARNING] Guidance embedder unavailable: %v\n", err)
	} else {
		vectorPath := os.Getenv("VECTOR_DB_PATH")
		if vectorPath == "" {
			vectorPath = "./vector_db"
		}
		vs, err := guidance.NewVectorStore(guidance.StoreConfig{
			PersistPath: vectorPath,
			Collection:  "regulations",
		}, embedder)
		if err != nil {
			fmt.Printf("[FATAL] Vector store init failed: %v\n", err)
			os.Exit(1)
		}
		guidanceSvc = guidance.NewService(vs, agentMgr)
	}

	// Forecast engine with the knowledge base as its advisor
	var advisor forecast.Advisor
	if guidanceSvc != nil {
		advisor = apiforecast.NewGuidanceAdvisor(guidanceSvc)
	}
	engine := forecast.NewEngine(advisor)

	// Config endpoints
	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)
	http.HandleFunc("/llm-provider-info", configHandler.HandleProviderInfo)

	// Assessment endpoints
	assessHandler := apiassessment.NewHandler(assessMgr, guidanceSvc, agentMgr)
	http.HandleFunc("/assess-eligibility", assessHandler.HandleStart)
	http.HandleFunc("/submit-answer", assessHandler.HandleSubmit)
	http.HandleFunc("/assessment-progress/", assessHandler.HandleProgress)
	http.HandleFunc("/detailed-guidance/", assessHandler.HandleDetailedGuidance)
	http.HandleFunc("/complete-enhanced-assessment", assessHandler.HandleEnhancedAssessment)

	// Forecast endpoints
	forecastHandler := apiforecast.NewHandler(engine)
	http.HandleFunc("/forecast-credits", forecastHandler.HandleForecastCredits)
	http.HandleFunc("/detailed-forecast-analysis", forecastHandler.HandleDetailedAnalysis)

	// Knowledge-base endpoints
	if guidanceSvc != nil {
		guidanceHandler := apiguidance.NewHandler(guidanceSvc)
		http.HandleFunc("/ask-question", guidanceHandler.HandleAskQuestion)
		http.HandleFunc("/upload-documents", guidanceHandler.HandleUploadDocuments)
		http.HandleFunc("/vector-store-stats", guidanceHandler.HandleStats)
	}

	// Health endpoint
	healthHandler := health.NewHandler(agentMgr, guidanceSvc)
	healthHandler.DBPing = dbPing
	http.HandleFunc("/health", healthHandler.HandleHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /assess-eligibility")
	fmt.Println("  - POST /submit-answer")
	fmt.Println("  - GET  /assessment-progress/{session_id}")
	fmt.Println("  - POST /detailed-guidance/{session_id}")
	fmt.Println("  - POST /complete-enhanced-assessment")
	fmt.Println("  - POST /forecast-credits")
	fmt.Println("  - POST /detailed-forecast-analysis")
	fmt.Println("  - POST /ask-question")
	fmt.Println("  - POST /upload-documents")
	fmt.Println("  - GET  /vector-store-stats")
	fmt.Println("  - GET  /llm-provider-info")
	fmt.Println("  - GET  /health")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
