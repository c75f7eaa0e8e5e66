package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Uranury/altimeter/altimeter"
	"github.com/Uranury/altimeter/sensors"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values.
type Config struct {
	Mode      altimeter.Mode
	HTTPAddr  string
	StaticDir string

	SensorInterval time.Duration
	BMP280Bus      string // empty uses the mock barometer
	BMP280Addr     uint16
	DHT22Pin       string // empty disables the ambient sensor

	MQTTBroker        string
	MQTTClientID      string
	MQTTPressureTopic string
	MQTTStateTopic    string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// Load reads .env files (if any) into the environment and builds a Config.
// A missing .env file is not an error; a malformed one is.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StaticDir:         getEnv("STATIC_DIR", "./static"),
		BMP280Bus:         getEnv("BMP280_BUS", ""),
		DHT22Pin:          getEnv("DHT22_PIN", ""),
		MQTTBroker:        getEnv("MQTT_BROKER", ""),
		MQTTClientID:      getEnv("MQTT_CLIENT_ID", "altimeter"),
		MQTTPressureTopic: getEnv("MQTT_PRESSURE_TOPIC", ""),
		MQTTStateTopic:    getEnv("MQTT_STATE_TOPIC", ""),
		InfluxURL:         getEnv("INFLUX_URL", ""),
		InfluxToken:       getEnv("INFLUX_TOKEN", ""),
		InfluxOrg:         getEnv("INFLUX_ORG", ""),
		InfluxBucket:      getEnv("INFLUX_BUCKET", ""),
	}

	mode, err := altimeter.ParseMode(getEnv("ALTIMETER_MODE", "simulation"))
	if err != nil {
		return nil, fmt.Errorf("ALTIMETER_MODE: %w", err)
	}
	cfg.Mode = mode

	interval, err := time.ParseDuration(getEnv("SENSOR_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("SENSOR_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("SENSOR_INTERVAL must be positive, got %s", interval)
	}
	cfg.SensorInterval = interval

	addr, err := strconv.ParseUint(getEnv("BMP280_ADDR", strconv.Itoa(sensors.DefaultBMP280Address)), 0, 16)
	if err != nil {
		return nil, fmt.Errorf("BMP280_ADDR: %w", err)
	}
	cfg.BMP280Addr = uint16(addr)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if (c.MQTTPressureTopic != "" || c.MQTTStateTopic != "") && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when an MQTT topic is set")
	}
	if c.InfluxURL != "" && (c.InfluxOrg == "" || c.InfluxBucket == "") {
		return fmt.Errorf("INFLUX_ORG and INFLUX_BUCKET are required when INFLUX_URL is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s not set, using %q", key, defaultValue)
	return defaultValue
}
