package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quickload/quickload/pkg/events"
	"github.com/quickload/quickload/pkg/logging"
	"github.com/quickload/quickload/pkg/prefetch"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Configuration from environment
	upstreamURL := getEnv("UPSTREAM_URL", "")
	port := getEnv("PORT", "8080")
	lowWater := getEnvInt("LOW_WATER", prefetch.DefaultLowWater)
	pageSize := getEnvInt("PAGE_SIZE", 50)
	redisURL := getEnv("REDIS_URL", "")

	logging.Setup(logging.DefaultConfig())

	if upstreamURL == "" {
		log.Fatal("UPSTREAM_URL is required")
	}

	cfg := prefetch.DefaultConfig(upstreamURL)
	cfg.LowWater = lowWater
	cfg.PageSize = pageSize

	// Event sink: Redis pub/sub when configured, in-process bus otherwise
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})

		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Connected to Redis at %s", redisURL)

		defer redisClient.Close()
		cfg.Emitter = events.NewRedisEmitter(redisClient)
	} else {
		bus := events.NewBus()
		go logEvents(bus.Subscribe())
		cfg.Emitter = bus
	}

	coordinator, err := prefetch.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create coordinator: %v", err)
	}

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/items", itemsHandler(coordinator))
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	log.Printf("Starting quickload proxy on %s", addr)
	log.Printf("Upstream: %s (page size %d, low water %d)", upstreamURL, pageSize, lowWater)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func itemsHandler(coordinator *prefetch.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := 10
		if raw := r.URL.Query().Get("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid n: %v", err), http.StatusBadRequest)
				return
			}
			n = parsed
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		items, err := coordinator.Request(ctx, n)
		if err != nil {
			http.Error(w, fmt.Sprintf("Upstream fetch failed: %v", err), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(items); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
	}
}

func logEvents(ch <-chan string) {
	for event := range ch {
		log.Printf("Event: %s", event)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Invalid %s: %v", key, err)
		}
		return parsed
	}
	return defaultValue
}
