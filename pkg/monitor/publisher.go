package monitor

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
	"github.com/robotalks/dbgcon/pkg/console"
	fx "github.com/robotalks/dbgcon/pkg/framework"
)

// Sink publishes a payload, mqtt.Queue is one.
type Sink interface {
	Pub(topic string, payload []byte) paho.Token
}

// Publisher is a console.EventHandler publishing every event.
type Publisher struct {
	Sink  Sink
	Topic string
	Clock fx.TimeSource
}

// NewPublisher creates a Publisher for the events of console id.
func NewPublisher(q *mqtt.Queue, id string) *Publisher {
	return &Publisher{Sink: q, Topic: mqtt.EventsTopic(id), Clock: fx.WallClock}
}

// HandleEvent implements console.EventHandler. It doesn't wait for the
// publish to complete.
func (p *Publisher) HandleEvent(ev console.Event) {
	now := time.Now()
	if p.Clock != nil {
		now = p.Clock.Time()
	}
	data, err := Encode(ev, now)
	if err != nil {
		glog.Errorf("encode %s event: %v", ev.Kind, err)
		return
	}
	p.Sink.Pub(p.Topic, data)
}
