package config

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestAsynqRedisOptFromHostPort(t *testing.T) {
	cfg := &Config{
		RedisURL:      "localhost:6379",
		RedisPassword: "secret",
		RedisDB:       1,
	}

	opt, err := AsynqRedisOpt(cfg)
	if err != nil {
		t.Fatalf("build opt: %v", err)
	}

	clientOpt, ok := opt.(asynq.RedisClientOpt)
	if !ok {
		t.Fatalf("expected RedisClientOpt, got %T", opt)
	}
	if clientOpt.Addr != "localhost:6379" || clientOpt.Password != "secret" || clientOpt.DB != 1 {
		t.Fatalf("unexpected opt: %+v", clientOpt)
	}
}

func TestAsynqRedisOptFromURL(t *testing.T) {
	cfg := &Config{RedisURL: "redis://:secret@redis.example.com:6380/2"}

	opt, err := AsynqRedisOpt(cfg)
	if err != nil {
		t.Fatalf("build opt: %v", err)
	}

	clientOpt, ok := opt.(asynq.RedisClientOpt)
	if !ok {
		t.Fatalf("expected RedisClientOpt, got %T", opt)
	}
	if clientOpt.Addr != "redis.example.com:6380" {
		t.Fatalf("unexpected addr: %s", clientOpt.Addr)
	}
	if clientOpt.Password != "secret" || clientOpt.DB != 2 {
		t.Fatalf("unexpected credentials: %+v", clientOpt)
	}
}

func TestAsynqRedisOptRejectsBadURL(t *testing.T) {
	cfg := &Config{RedisURL: "redis://bad uri"}
	if _, err := AsynqRedisOpt(cfg); err == nil {
		t.Fatal("expected an error for an unparseable URL")
	}
}
