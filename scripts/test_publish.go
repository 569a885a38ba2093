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

type planJob struct {
	JobID      string    `json:"job_id"`
	Payload    []byte    `json:"payload"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	stream := flag.String("stream", "trips:plan:jobs", "Stream to publish the job to")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Test request (Pyrenees climbs)
	payload := map[string]interface{}{
		"name": "Pyrenees sampler",
		"segments": []map[string]interface{}{
			{"id": "col-du-tourmalet"},
			{"id": "hautacam", "reversed": true},
		},
		"start":                      map[string]float64{"lat": 43.1, "lon": 0.05},
		"max_days":                   3,
		"max_daily_distance_meters":  100000,
		"max_daily_elevation_meters": 2500,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to marshal payload: %v", err)
	}

	job := planJob{
		JobID:      uuid.New().String(),
		Payload:    payloadJSON,
		EnqueuedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		log.Fatalf("Failed to marshal job: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *stream,
		Values: map[string]interface{}{
			"job": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish job: %v", err)
	}

	fmt.Printf("✅ Job published successfully!\n")
	fmt.Printf("   Stream: %s\n", *stream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Job ID: %s\n", job.JobID)

	fmt.Printf("\n⏳ Waiting for worker result...\n")

	resultKey := "trips:plan:result:" + job.JobID
	timeout := time.After(60 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("❌ Timeout waiting for result")
			return
		case <-ticker.C:
			raw, err := client.Get(ctx, resultKey).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				log.Fatalf("Failed to read result: %v", err)
			}

			var response map[string]interface{}
			if err := json.Unmarshal([]byte(raw), &response); err != nil {
				log.Fatalf("Failed to decode result: %v", err)
			}

			fmt.Printf("\n✅ Result received!\n")
			prettyJSON, _ := json.MarshalIndent(response, "", "  ")
			fmt.Printf("%s\n", prettyJSON)
			return
		}
	}
}
