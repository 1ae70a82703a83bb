//go:build ignore
// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/pkg/useragent"
)

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	ip := flag.String("ip", "73.162.10.4", "Visitor IP in the test event")
	ua := flag.String("ua", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15", "User-Agent")
	wait := flag.Duration("wait", 15*time.Second, "How long to watch the dead-letter stream")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовый визит (San Jose, Comcast)
	now := time.Now().UTC()
	event := domain.NotificationEvent{
		ID: uuid.New(),
		Visit: domain.Visit{
			ID:        uuid.New(),
			IP:        *ip,
			Path:      "/pricing",
			Referer:   "https://news.ycombinator.com/",
			UserAgent: useragent.Parse(*ua),
			Lookup: &domain.IPLookup{
				IP:     *ip,
				Source: domain.LookupSourceProvider,
				Location: domain.LocationInfo{
					CountryName: "United States",
					CountryCode: "US",
					Region:      "California",
					City:        "San Jose",
					TimeZone:    "America/Los_Angeles",
					Latitude:    ptr(37.3382),
					Longitude:   ptr(-121.8863),
				},
				Network: domain.NetworkInfo{
					ASN:          "AS7922",
					Organization: "Comcast Cable Communications, LLC",
				},
				FetchedAt: now,
			},
			AccuracyRadius: &domain.AccuracyRadius{
				RadiusKm: 7.98,
				Source:   domain.RadiusSourceConfidenceArea,
			},
			CreatedAt: now,
		},
		CreatedAt: now,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamVisitorNotify,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: %s\n", domain.StreamVisitorNotify)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Event ID: %s\n", event.ID)
	fmt.Printf("   Visitor: %s (%s, %s)\n", event.Visit.IP, event.Visit.Lookup.Location.City, event.Visit.Lookup.Location.CountryCode)

	// Если воркер не смог доставить событие, оно окажется в dead-letter стриме
	fmt.Printf("\n⏳ Watching %s for %s...\n", domain.StreamVisitorNotifyDead, *wait)

	timeout := time.After(*wait)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("✅ No dead letter for this event, delivery looks fine")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{domain.StreamVisitorNotifyDead, result},
				Count:   10,
				Block:   -1,
			}).Result()
			if err != nil {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var dead domain.DeadLetter
					if err := json.Unmarshal([]byte(dataStr), &dead); err != nil {
						continue
					}

					if dead.Event.ID == event.ID {
						fmt.Printf("\n❌ Event dead-lettered after %d attempts: %s\n", dead.Attempts, dead.LastError)
						return
					}
				}
			}
		}
	}
}
