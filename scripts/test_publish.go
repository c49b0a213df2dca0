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
)

type FeedIngestEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	Payload   string    `json:"payload"`
}

const samplePayload = `{
  "JMapData": {
    "isFleet": false,
    "Time": {"timestamp": 1700000500, "timezone": "UTC"},
    "DataSets": [
      {"type": "device", "id": "truck1", "route": "true", "Points": [
        "truck1|Truck 1|1700000000|2023/11/14|22:13:20|UTC|InMotion|0|41.3851|2.1734|0|0|10.0|7|45.0|90.0|10.0|100.0|0|0|Street",
        "truck1|Truck 1|1700000100|2023/11/14|22:15:00|UTC|InMotion|0|41.3900|2.1800|0|0|10.0|7|30.0|180.0|10.0|100.0|0|0|Street"
      ]}
    ]
  }
}`

func main() {
	redisAddr := flag.String("redis", "localhost:6380", "Redis address for streams")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Test event (Barcelona track, two points)
	event := FeedIngestEvent{
		SessionID: uuid.New(),
		Payload:   samplePayload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:feed:ingest",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: stream:feed:ingest\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Session ID: %s\n", event.SessionID)
	fmt.Printf("   Payload bytes: %d\n", len(event.Payload))

	fmt.Printf("\n⏳ Waiting for response in stream:scene:updated...\n")

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("❌ Timeout waiting for response")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{"stream:scene:updated", "0"},
				Count:   10,
				Block:   0,
			}).Result()

			if err != nil && err != redis.Nil {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var response map[string]interface{}
					if err := json.Unmarshal([]byte(dataStr), &response); err != nil {
						continue
					}

					if sessionID, ok := response["session_id"].(string); ok {
						if sessionID == event.SessionID.String() {
							fmt.Printf("\n✅ Scene updated!\n")
							prettyJSON, _ := json.MarshalIndent(response, "", "  ")
							fmt.Printf("%s\n", prettyJSON)
							return
						}
					}
				}
			}
		}
	}
}
