package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Meta announces a console on the broker.
type Meta struct {
	ID        string `json:"id"`
	Transport string `json:"transport,omitempty"`
	Firmware  string `json:"firmware,omitempty"`
}

// MetaTopic is the retained topic announcing the console id.
func MetaTopic(id string) string { return id + "/meta" }

// NewAnnouncingQueue creates a Queue publishing meta (retained) whenever it
// connects. The broker clears the announcement if the client is lost.
func NewAnnouncingQueue(brokerURL string, meta Meta) (*Queue, error) {
	data, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(meta.ID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("dbgcon:" + meta.ID)
	}
	q := NewQueue(opts, topicPrefix)
	q.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(meta.ID), data, 1, true)
	}
	return q, nil
}

// Withdraw clears the announcement of console id.
func (q *Queue) Withdraw(id string) paho.Token {
	return q.PubWith(MetaTopic(id), nil, 1, true)
}

// parseMeta decodes an announcement, ok is false for cleared ones.
func parseMeta(topic string, payload []byte) (meta Meta, ok bool) {
	if len(payload) == 0 || !strings.HasSuffix(topic, "/meta") {
		return
	}
	if json.Unmarshal(payload, &meta) != nil {
		return
	}
	if meta.ID == "" {
		meta.ID = strings.TrimSuffix(topic, "/meta")
	}
	return meta, true
}

// Discover collects the announced consoles until timeout.
func Discover(ctx context.Context, brokerURL string, timeout time.Duration) (res []Meta, err error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaCh := make(chan Meta, 1)
	q.Sub(MetaTopic("+"), func(topic string, payload []byte) {
		if meta, ok := parseMeta(topic, payload); ok {
			select {
			case metaCh <- meta:
			case <-time.After(time.Second):
			}
		}
	})
	q.Connect()
	defer q.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	expire := time.After(timeout)
	for {
		select {
		case meta := <-metaCh:
			res = append(res, meta)
		case <-expire:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
