package redis_client

import (
	"context"
	"strconv"

	"github.com/optimode/paxstats/pkg/util"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

const defaultConnectionPassword = ""
const defaultDatabase = 0

// Configured reports whether a redis address has been provided
func Configured() bool {
	return util.GetEnvironmentVariable(util.GetEnvironmentVariables(), "REDIS_ADDRESS", "") != ""
}

func Connect(ctx context.Context) error {
	env := util.GetEnvironmentVariables()

	address := util.GetEnvironmentVariable(env, "REDIS_ADDRESS", "localhost:6379")
	password := util.GetEnvironmentVariable(env, "REDIS_PASSWORD", defaultConnectionPassword)
	database := defaultDatabase

	if value := util.GetEnvironmentVariable(env, "REDIS_DATABASE", ""); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		database = n
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}

	Client = client

	return nil
}

func Close() error {
	if Client == nil {
		return nil
	}

	err := Client.Close()
	Client = nil

	return err
}
