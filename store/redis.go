package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/hooklift/codegrant/types"
)

// RedisConfig configures a connection pool to a Redis instance used for
// grant and nonce storage.
type RedisConfig struct {
	Address     string `toml:"address"`
	Password    string `toml:"password"`
	ExpireSecs  int    `toml:"expire_secs"`
	MaxIdle     int    `toml:"max_idle"`
	IdleTimeout time.Duration
}

// Redis is a GrantStore and NonceStore backed by a Redis connection pool,
// for hosts running more than one instance of the Authorization Server.
type Redis struct {
	pool   *redis.Pool
	expiry int
}

// NewRedis returns a Redis store dialing cfg.Address. Values expire after
// cfg.ExpireSecs seconds of inactivity; zero uses DefaultGrantTTL.
func NewRedis(cfg *RedisConfig) *Redis {
	expiry := cfg.ExpireSecs
	if expiry <= 0 {
		expiry = int(DefaultGrantTTL / time.Second)
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 3
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 240 * time.Second
	}

	pool := &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: idleTimeout,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial("tcp", cfg.Address)
			if err != nil {
				return nil, err
			}
			if cfg.Password != "" {
				if _, err := c.Do("AUTH", cfg.Password); err != nil {
					c.Close()
					return nil, err
				}
			}
			return c, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	return &Redis{pool: pool, expiry: expiry}
}

func grantKey(code string) string { return fmt.Sprintf("codegrant:grant:%s", code) }
func nonceKey(nonce string) string { return fmt.Sprintf("codegrant:nonce:%s", nonce) }

// StoreGrant records grant under an expiring Redis key.
func (r *Redis) StoreGrant(grant types.GrantRecord) error {
	var data bytes.Buffer
	if err := gob.NewEncoder(&data).Encode(grant); err != nil {
		return fmt.Errorf("store: encoding grant: %w", err)
	}

	conn := r.pool.Get()
	defer conn.Close()
	_, err := conn.Do("SET", grantKey(grant.Code), data.Bytes(), "EX", r.expiry)
	return err
}

// ConsumeGrant atomically retrieves and deletes the Redis key for code,
// using GETDEL semantics (via a transaction) so two concurrent redemptions
// of the same code cannot both succeed.
func (r *Redis) ConsumeGrant(code string) (*types.GrantRecord, error) {
	conn := r.pool.Get()
	defer conn.Close()

	key := grantKey(code)
	conn.Send("MULTI")
	conn.Send("GET", key)
	conn.Send("DEL", key)
	reply, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		return nil, fmt.Errorf("store: consuming grant: %w", err)
	}

	raw, err := redis.Bytes(reply[0], nil)
	if err != nil {
		if err == redis.ErrNil {
			return nil, nil
		}
		return nil, fmt.Errorf("store: reading grant: %w", err)
	}

	var grant types.GrantRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&grant); err != nil {
		return nil, fmt.Errorf("store: decoding grant: %w", err)
	}
	return &grant, nil
}

// StoreNonce records nonce under an expiring Redis key.
func (r *Redis) StoreNonce(nonce string) error {
	conn := r.pool.Get()
	defer conn.Close()
	_, err := conn.Do("SET", nonceKey(nonce), "1", "EX", r.expiry)
	return err
}

// ConsumeNonce atomically checks for and deletes the Redis key for nonce.
func (r *Redis) ConsumeNonce(nonce string) (bool, error) {
	conn := r.pool.Get()
	defer conn.Close()

	key := nonceKey(nonce)
	conn.Send("MULTI")
	conn.Send("GET", key)
	conn.Send("DEL", key)
	reply, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		return false, fmt.Errorf("store: consuming nonce: %w", err)
	}

	_, err = redis.Bytes(reply[0], nil)
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: reading nonce: %w", err)
	}
	return true, nil
}
