package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/example/ride-ledger/internal/events"
	"github.com/example/ride-ledger/internal/models"
)

var (
	eventsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_consumed_total",
		Help: "Total ledger events consumed",
	})
	eventsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_events_invalid_total",
		Help: "Total invalid events received",
	})
	redisUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_redis_updates_total",
		Help: "Total successful redis projection updates",
	})
	redisErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_redis_errors_total",
		Help: "Total redis errors",
	})
)

func init() {
	prometheus.MustRegister(eventsConsumed, eventsInvalid, redisUpdates, redisErrors)
}

func main() {
	// allow some flags for local runs
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	brokersEnv := os.Getenv("KAFKA_BROKERS")
	brokers := []string{"localhost:9092"}
	if brokersEnv != "" {
		brokers = brokers[:0]
		for _, b := range strings.Split(brokersEnv, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "ledger-events"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "ride-ledger-indexer"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rc := redis.NewClient(&redis.Options{Addr: redisAddr})
	radapter := &redisAdapter{c: rc}

	// start metrics and health server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := rc.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis not ready", 503)
				return
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer func() {
		_ = r.Close()
		_ = rc.Close()
	}()

	log.Printf("indexer listening topic=%s brokers=%v group=%s", topic, brokers, group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down indexer")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		// reset backoff on success
		backoff = time.Second

		eventsConsumed.Inc()

		var env events.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			eventsInvalid.Inc()
			log.Printf("invalid envelope: %v", err)
			continue
		}

		if err := projectWithRetry(ctx, radapter, env, 3, 200*time.Millisecond); err != nil {
			redisErrors.Inc()
			log.Printf("projection failed for event=%s: %v", env.Name, err)
			continue
		}
		redisUpdates.Inc()
	}
}

// RedisUpdater is the subset of redis operations the projection needs,
// narrowed so tests can fake it.
type RedisUpdater interface {
	HSet(ctx context.Context, key string, values map[string]interface{}) error
	HIncrBy(ctx context.Context, key, field string, delta int64) error
	HGet(ctx context.Context, key, field string) (string, error)
}

type redisAdapter struct{ c *redis.Client }

func (r *redisAdapter) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	_, err := r.c.HSet(ctx, key, values).Result()
	return err
}

func (r *redisAdapter) HIncrBy(ctx context.Context, key, field string, delta int64) error {
	_, err := r.c.HIncrBy(ctx, key, field, delta).Result()
	return err
}

func (r *redisAdapter) HGet(ctx context.Context, key, field string) (string, error) {
	return r.c.HGet(ctx, key, field).Result()
}

func rideKey(id models.RideID) string { return fmt.Sprintf("ride:%d", id) }

func ratingKey(owner string) string { return "rating:" + owner }

// project applies one ledger event to the redis read model.
func project(ctx context.Context, rc RedisUpdater, env events.Envelope) error {
	switch env.Name {
	case "RideCreated":
		var ev models.RideCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		return rc.HSet(ctx, rideKey(ev.RideID), map[string]interface{}{
			"state":          string(models.RideStateOpen),
			"owner":          string(ev.Owner),
			"price_per_seat": ev.PricePerSeat,
			"total_seats":    int64(ev.TotalSeats),
			"date":           ev.Date.Format(time.RFC3339),
		})
	case "ReservationCreated":
		var ev models.ReservationCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		return rc.HIncrBy(ctx, rideKey(ev.RideID), "seats_reserved", int64(ev.Seats))
	case "ReservationCancelled":
		var ev models.ReservationCancelled
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		return rc.HIncrBy(ctx, rideKey(ev.RideID), "seats_reserved", -int64(ev.Seats))
	case "RideFinished":
		var ev models.RideFinished
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		return rc.HSet(ctx, rideKey(ev.RideID), map[string]interface{}{"state": string(models.RideStateFinished)})
	case "RideCancelled":
		var ev models.RideCancelled
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		return rc.HSet(ctx, rideKey(ev.RideID), map[string]interface{}{"state": string(models.RideStateCancelled)})
	case "RatingGiven":
		var ev models.RatingGiven
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return err
		}
		owner, err := rc.HGet(ctx, rideKey(ev.RideID), "owner")
		if err != nil {
			return err
		}
		if err := rc.HIncrBy(ctx, ratingKey(owner), "sum", int64(ev.Stars)); err != nil {
			return err
		}
		return rc.HIncrBy(ctx, ratingKey(owner), "count", 1)
	default:
		return fmt.Errorf("unknown event %q", env.Name)
	}
}

// projectWithRetry applies an event with bounded retry and backoff.
func projectWithRetry(ctx context.Context, rc RedisUpdater, env events.Envelope, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = project(ctx, rc, env); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
