package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/merchstack/rule-engine/api"
	"github.com/merchstack/rule-engine/config"
	"github.com/merchstack/rule-engine/internal/boost"
	"github.com/merchstack/rule-engine/internal/engine"
	"github.com/merchstack/rule-engine/internal/registry"
	"github.com/merchstack/rule-engine/internal/rules"
	"github.com/merchstack/rule-engine/store"
)

const (
	documentSnapshotFile = "rule_documents.gob"
	maxRequestBodyBytes  = 10 << 20
)

func main() {
	// Define command-line flags
	var (
		help        = flag.Bool("help", false, "Show help message")
		version     = flag.Bool("version", false, "Show version information")
		port        = flag.String("port", "8080", "Port to run the server on")
		dataDir     = flag.String("data-dir", "./rule_data", "Directory for authored rules and document snapshots")
		registryDir = flag.String("registry-dir", "", "Directory of the taxonomy registry database (empty for in-memory)")
		redisAddr   = flag.String("redis-addr", "", "Redis address for boost mappings (empty disables boost lookups)")
		degrade     = flag.Bool("degrade-on-store-failure", false, "Run searches without rules when the document store fails")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Merchandising Rule Engine - boost, block, facet and redirect rules for product search\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                              # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000                  # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --redis-addr localhost:6379  # Enable boost mapping lookups\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("Merchandising Rule Engine v1.0.0\n")
		return
	}

	settings := config.DefaultSettings()
	settings.RuleDataDir = *dataDir
	settings.RegistryDir = *registryDir
	if *degrade {
		settings.StoreFailurePolicy = config.StoreFailureDegrade
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	log.Printf("Using data directory: %s", settings.RuleDataDir)

	reg, err := openRegistry(settings.RegistryDir)
	if err != nil {
		log.Fatalf("Failed to open registry: %v", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			log.Printf("Failed to close registry: %v", err)
		}
	}()

	docs := store.NewMemoryDocumentStore()
	snapshotPath := filepath.Join(settings.RuleDataDir, documentSnapshotFile)
	if err := docs.Load(snapshotPath); err != nil {
		log.Printf("Warning: failed to load document snapshot from %s: %v. Starting empty.", snapshotPath, err)
	} else if docs.Len() > 0 {
		log.Printf("Loaded %d rule documents from %s", docs.Len(), snapshotPath)
	}

	var boosts *boost.MappingCache
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		boosts = boost.NewMappingCache(boost.NewRedisFetcher(client), settings.BoostMappingTTL)
		log.Printf("Boost mappings served from Redis at %s", *redisAddr)
	}

	ruleStore := rules.NewFileRuleStore(settings.RuleDataDir)
	ruleEngine := engine.New(settings, ruleStore, reg, docs, boosts)

	// Initialize Gin router
	router := gin.Default()
	router.Use(api.CORSMiddleware(), api.RequestSizeLimitMiddleware(maxRequestBodyBytes))

	// Setup API routes
	api.SetupRoutes(router, ruleEngine, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting server on port %s...", *port)
		if err := router.Run(":" + *port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down, saving document snapshot to %s", snapshotPath)
	if err := docs.Save(snapshotPath); err != nil {
		log.Printf("Failed to save document snapshot: %v", err)
	}
}

func openRegistry(dir string) (*registry.Registry, error) {
	if dir == "" {
		log.Printf("No registry directory configured, using in-memory registry")
		return registry.OpenInMemory()
	}
	return registry.Open(dir)
}
