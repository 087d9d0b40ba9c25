package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
feed:
  push_url: ws://localhost:8001/ws/stocks
  snapshot_url: http://localhost:8001/api/snapshot
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "development" {
		t.Fatalf("environment %q", c.Environment)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("port %d", c.Server.Port)
	}
	if c.Feed.ReconnectDelay != 5*time.Second {
		t.Fatalf("reconnect delay %v", c.Feed.ReconnectDelay)
	}
	if !c.Poll.Enabled || c.Poll.Interval != time.Second {
		t.Fatalf("poll defaults %+v", c.Poll)
	}
	if c.Alerts.Sink != "log" {
		t.Fatalf("sink %q", c.Alerts.Sink)
	}
	if c.Replay.EMAShort != 38 || c.Replay.EMALong != 100 {
		t.Fatalf("ema defaults %d/%d", c.Replay.EMAShort, c.Replay.EMALong)
	}
}

func TestLoadMissingFeedURLs(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: production\n")); err == nil {
		t.Fatalf("config without feed URLs must fail validation")
	}
}

func TestLoadRejectsUnknownSink(t *testing.T) {
	cfg := minimalConfig + `
alerts:
  sink: pager
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatalf("unknown sink accepted")
	}
}

func TestLoadPollDisabled(t *testing.T) {
	cfg := minimalConfig + `
poll:
  enabled: false
`
	c, err := Load(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// An explicit false must survive default application.
	if c.Poll.Enabled {
		t.Fatalf("poll.enabled: false came back as true")
	}
	// Sibling defaults still fill in.
	if c.Poll.Interval != time.Second {
		t.Fatalf("poll interval %v", c.Poll.Interval)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg := minimalConfig + `
server:
  port: 9090
poll:
  interval: 250ms
alerts:
  sink: redis
  redis:
    addr: redis:6379
`
	c, err := Load(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("port %d", c.Server.Port)
	}
	if c.Poll.Interval != 250*time.Millisecond {
		t.Fatalf("interval %v", c.Poll.Interval)
	}
	if c.Alerts.Sink != "redis" || c.Alerts.Redis.Addr != "redis:6379" {
		t.Fatalf("redis sink %+v", c.Alerts)
	}
	// Untouched defaults stay filled.
	if c.Alerts.Redis.Channel != "tickboard:alerts" {
		t.Fatalf("channel %q", c.Alerts.Redis.Channel)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FEED_PUSH_URL", "ws://feed:9001/ws/stocks")
	t.Setenv("ALERT_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Feed.PushURL != "ws://feed:9001/ws/stocks" {
		t.Fatalf("push url %q", c.Feed.PushURL)
	}
	if c.Alerts.Sink != "kafka" {
		t.Fatalf("sink %q", c.Alerts.Sink)
	}
	if len(c.Alerts.Kafka.Brokers) != 2 || c.Alerts.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers %v", c.Alerts.Kafka.Brokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}
