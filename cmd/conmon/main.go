package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
	"github.com/robotalks/dbgcon/pkg/monitor"
)

var (
	mqttURL = "mqtt://localhost:1883/dbgcon/"
	id      = "+"
)

func init() {
	if val := os.Getenv("DBGCON_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&id, "id", id, "Console ID to monitor, + for all.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(mqtt.EventsTopic(id), mqtt.Handler(func(topic string, payload []byte) {
		r, err := monitor.Decode(payload)
		if err != nil {
			log.Printf("%s: bad event: %v", topic, err)
			return
		}
		log.Printf("%s: %s", strings.TrimSuffix(topic, "/events"), r)
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
