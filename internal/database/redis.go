package database

import (
	"context"
	"fmt"

	"workforce_backend/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client and checks it with PING.
func ConnectRedis(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	res, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", addr, err)
	}
	utils.LogInfo("Successfully connected to Redis", map[string]interface{}{"addr": addr, "ping": res})
	return rdb, nil
}
