package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis wires the optional availability cache. An empty addr, or a
// failed ping, leaves the cache disabled; the engine works without it.
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, availability cache disabled: %v", addr, err)
		_ = client.Close()
		return nil
	}

	Redis = client
	log.Println("connected to Redis")
	return Redis
}

func CloseRedis() {
	if Redis != nil {
		_ = Redis.Close()
		Redis = nil
	}
}
