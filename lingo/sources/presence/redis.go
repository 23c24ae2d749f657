package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const onlineKey = "lingo:presence"

// Redis keeps socket counts in one hash so several server processes share presence.
type Redis struct {
	client *redis.Client
}

var _ Tracker = (*Redis)(nil)

func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &Redis{client: c}, nil
}

func (r *Redis) Connect(ctx context.Context, userID int) (bool, error) {
	n, err := r.client.HIncrBy(ctx, onlineKey, strconv.Itoa(userID), 1).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// decrScript drops the field once the count reaches zero, atomically.
var decrScript = redis.NewScript(`
local n = redis.call("HINCRBY", KEYS[1], ARGV[1], -1)
if n <= 0 then
  redis.call("HDEL", KEYS[1], ARGV[1])
end
return n
`)

func (r *Redis) Disconnect(ctx context.Context, userID int) (bool, error) {
	n, err := decrScript.Run(ctx, r.client, []string{onlineKey}, strconv.Itoa(userID)).Int64()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *Redis) Online(ctx context.Context, userIDs []int) (map[int]bool, error) {
	out := make(map[int]bool, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	fields := make([]string, len(userIDs))
	for i, id := range userIDs {
		fields[i] = strconv.Itoa(id)
	}
	vals, err := r.client.HMGet(ctx, onlineKey, fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, id := range userIDs {
		out[id] = false
		if s, ok := vals[i].(string); ok {
			n, _ := strconv.Atoi(s)
			out[id] = n > 0
		}
	}
	return out, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
