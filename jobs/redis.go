package jobs

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// RedisClientOpt maps go-redis options onto the asynq connection options.
func RedisClientOpt(opts *redis.Options) asynq.RedisClientOpt {
	if opts == nil {
		return asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	}
	return asynq.RedisClientOpt{
		Network:   opts.Network,
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}
}
