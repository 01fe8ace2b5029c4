package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/config"
	"aqi-monitor-api/inference"
	"aqi-monitor-api/services"
	"aqi-monitor-api/storage"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := services.NewLogger(cfg.Log).With("service", "collector")
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(ctx, cfg.Database.URL())
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry, err := inference.NewRegistry(cfg.Models)
	if err != nil {
		logger.Error("model registry init failed", "error", err)
		os.Exit(1)
	}
	registry = services.InstrumentRegistry(registry)

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, live publishing disabled", "error", err)
	}
	defer cache.Close()

	ingestor := aqi.NewIngestor(
		aqi.NewAQIPredictor(registry.AQI),
		store,
		aqi.WithNotifier(services.NewLivePublisher(cache)),
		aqi.WithLogger(logger),
	)

	go func() {
		if err := services.ServeOps(ctx, cfg.Worker.MetricsAddr, store.Ping); err != nil {
			logger.Error("metrics server failed", "error", err)
			stop()
		}
	}()

	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = "aqi-collector-" + time.Now().Format("20060102150405")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.URL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		handleMessage(ctx, ingestor, msg.Topic(), msg.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(cfg.MQTT.Topic, 1, nil)
		token.Wait()
		if token.Error() != nil {
			logger.Error("mqtt subscribe failed", "topic", cfg.MQTT.Topic, "error", token.Error())
			return
		}
		logger.Info("subscribed", "topic", cfg.MQTT.Topic)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		logger.Error("mqtt connection failed", "broker", cfg.MQTT.URL, "error", token.Error())
		os.Exit(1)
	}

	logger.Info("collector running", "broker", cfg.MQTT.URL, "metrics", cfg.Worker.MetricsAddr)

	<-ctx.Done()
	logger.Info("collector shutting down")
	client.Disconnect(250)
}

// handleMessage decodes one MQTT message and runs it through the ingestor.
func handleMessage(ctx context.Context, ingestor *aqi.Ingestor, topic string, payload []byte) {
	reading, at, err := decodeReading(topic, payload, time.Now())
	if err != nil {
		services.ReadingsFailed.WithLabelValues("mqtt", "invalid").Inc()
		slog.Warn("rejected payload", "topic", topic, "error", err)
		return
	}

	if _, err := ingestor.IngestAt(ctx, reading, at); err != nil {
		reason := "storage"
		var mie *aqi.ModelInferenceError
		switch {
		case errors.Is(err, aqi.ErrUnknownSensor):
			reason = "unknown_sensor"
			slog.Warn("reading for unknown sensor dropped", "topic", topic, "sensor_id", reading.SensorID)
		case errors.As(err, &mie):
			reason = "model"
		}
		services.ReadingsFailed.WithLabelValues("mqtt", reason).Inc()
		return
	}
	services.ReadingsIngested.WithLabelValues("mqtt").Inc()
}
