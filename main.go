package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"

	"github.com/Uranury/altimeter/altimeter"
	"github.com/Uranury/altimeter/config"
	"github.com/Uranury/altimeter/sensors"
	"github.com/Uranury/altimeter/server"
	"github.com/Uranury/altimeter/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctrl := altimeter.NewController(cfg.Mode)

	var mqttClient mqtt.Client
	if cfg.MQTTBroker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientID).
			SetAutoReconnect(true)

		mqttClient = mqtt.NewClient(opts)
		if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("MQTT connect: %w", token.Error())
		}
		defer mqttClient.Disconnect(250)
		log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)
	}

	var sinks telemetry.Fanout
	var influx *telemetry.InfluxSink
	if cfg.InfluxURL != "" {
		influx = telemetry.NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		defer influx.Close()
		sinks = append(sinks, influx)
	}
	if cfg.MQTTStateTopic != "" {
		sinks = append(sinks, telemetry.NewMQTTPublisher(mqttClient, cfg.MQTTStateTopic))
	}
	if len(sinks) > 0 {
		ctrl.OnChange(sinks.Record)
		sinks.Record(ctrl.Snapshot())
	}

	sources, err := buildSources(cfg, mqttClient)
	if err != nil {
		return err
	}

	handle := func(data *sensors.SensorData) {
		log.Printf("%s: %+v", data.SensorType, data.Fields)
		if influx != nil {
			influx.RecordSample(data)
		}
		if p, ok := data.Pressure(); ok {
			ctrl.ApplySensorReading(p)
		} else if raw, has := data.Fields[sensors.FieldPressure]; has {
			log.Printf("%s: dropping unusable pressure %v", data.SensorType, raw)
		}
	}

	for _, src := range sources {
		if err := src.Start(ctx, handle); err != nil {
			return fmt.Errorf("start %s: %w", src.Name(), err)
		}
		defer src.Stop()
		log.Printf("  - %s", src.Name())
	}
	log.Println("Monitoring sensors:", len(sources))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(ctrl, cfg.StaticDir).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (%s mode)", cfg.HTTPAddr, ctrl.Mode())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildSources(cfg *config.Config, mqttClient mqtt.Client) ([]sensors.Source, error) {
	var sources []sensors.Source

	var barometer sensors.Sensor
	if cfg.BMP280Bus != "" {
		bmp, err := sensors.NewBMP280(cfg.BMP280Bus, cfg.BMP280Addr)
		if err != nil {
			return nil, err
		}
		barometer = bmp
	} else {
		barometer = sensors.NewMockBMP280(altimeter.SeaLevelPressure, 0.5)
	}
	sources = append(sources, sensors.NewPoller(barometer, cfg.SensorInterval))

	if cfg.DHT22Pin != "" {
		dht22, err := sensors.NewDHT22(cfg.DHT22Pin)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sensors.NewPoller(dht22, cfg.SensorInterval))
	}

	if cfg.MQTTPressureTopic != "" {
		sources = append(sources, sensors.NewMQTTBarometer(mqttClient, cfg.MQTTPressureTopic))
	}

	return sources, nil
}
