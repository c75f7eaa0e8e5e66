package telemetry

import (
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/Uranury/altimeter/altimeter"
	"github.com/Uranury/altimeter/sensors"
)

const measurement = "altimeter"

// pointWriter is the part of api.WriteAPI the sink uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// InfluxSink writes one point per state change through the non-blocking
// write API, and can also export raw sensor samples.
type InfluxSink struct {
	client influxdb2.Client
	writer pointWriter
	now    func() time.Time
}

// NewInfluxSink connects to InfluxDB. Write errors are logged as they
// surface from the client's error channel.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	writeAPI := client.WriteAPI(org, bucket)

	go func() {
		for err := range writeAPI.Errors() {
			log.Printf("influx write error: %v", err)
		}
	}()

	return &InfluxSink{client: client, writer: writeAPI, now: time.Now}
}

func (s *InfluxSink) Record(st altimeter.State) {
	p := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("mode", st.Mode.String()).
		AddField("pressure_hpa", st.Pressure).
		AddField("altitude_m", st.Altitude).
		AddField("color_r", int64(st.Color.R)).
		AddField("color_g", int64(st.Color.G)).
		AddField("color_b", int64(st.Color.B)).
		SetTime(s.now())

	s.writer.WritePoint(p)
}

// RecordSample writes a raw sensor sample with all of its fields.
func (s *InfluxSink) RecordSample(data *sensors.SensorData) {
	p := influxdb2.NewPointWithMeasurement("sensor_data").
		AddTag("sensor", data.SensorType).
		SetTime(data.Timestamp)

	for key, value := range data.Fields {
		p.AddField(key, value)
	}

	s.writer.WritePoint(p)
}

// Close flushes pending points and closes the client.
func (s *InfluxSink) Close() {
	s.writer.Flush()
	if s.client != nil {
		s.client.Close()
	}
}
