package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL bounds how long an abandoned room's snapshot lingers.
const snapshotTTL = 24 * time.Hour

// RedisStore keeps snapshots under room:snap:<code>.
type RedisStore struct {
	client *redis.Client
}

// ConnectRedis dials and pings a Redis instance.
func ConnectRedis(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func snapshotKey(roomCode string) string { return "room:snap:" + roomCode }

func (s *RedisStore) Save(ctx context.Context, roomCode string, data []byte) error {
	return s.client.Set(ctx, snapshotKey(roomCode), data, snapshotTTL).Err()
}

func (s *RedisStore) Load(ctx context.Context, roomCode string) ([]byte, error) {
	data, err := s.client.Get(ctx, snapshotKey(roomCode)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, roomCode string) error {
	return s.client.Del(ctx, snapshotKey(roomCode)).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
