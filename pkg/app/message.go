package app

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/womat/debug"

	"ptrx/pkg/message"
	"ptrx/pkg/mqtt"
)

// readMessages waits in an endless loop for received messages, saves them
// to the app main structure and forwards them to the mqtt broker.
func (app *App) readMessages() {
	for {
		r, err := app.msg.Get()
		if err != nil {
			if errors.Is(err, io.EOF) {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			debug.ErrorLog.Println(err)
			time.Sleep(time.Second)
			continue
		}

		debug.DebugLog.Printf("message: %q (valid: %v)", r.Text, r.Valid)

		app.data.Lock()
		app.data.record = r
		app.data.ok = true
		app.data.Unlock()

		app.publishRecord(r)
	}
}

// publishRecord sends the record to the mqtt broker if its text or
// validity changed, or the publish interval has elapsed.
func (app *App) publishRecord(r message.Record) {
	app.published.Lock()
	defer app.published.Unlock()

	if app.published.ok {
		last := app.published.record
		unchanged := r.Text == last.Text && r.Valid == last.Valid
		if unchanged && r.Time.Sub(last.Time) < app.config.MQTT.Interval {
			return
		}
	}

	app.published.record = r
	app.published.ok = true
	app.sendMQTT(app.config.MQTT.Topic, r)
}

// sendMQTT sends the message struct to the mqtt broker.
func (app *App) sendMQTT(topic string, record message.Record) {
	go func(t string, r message.Record) {
		debug.TraceLog.Printf("prepare mqtt message %v %v", t, r)

		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
			return
		}

		app.mqtt.C <- mqtt.Message{
			Qos:      0,
			Retained: true,
			Topic:    t,
			Payload:  b,
		}
	}(topic, record)
}
