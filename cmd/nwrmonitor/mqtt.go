// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ke4roh/si4707nwr/varint"
)

// mq is a handle onto an MQTT broker connection, publish-only: nwrmonitor
// has no use for the subscription and local-forwarding machinery a
// bidirectional gateway needs.
type mq struct {
	conn   mqtt.Client
	prefix string
}

// newMQ connects to a broker and returns a new mq object.
func newMQ(conf MqttConfig) (*mq, error) {
	mqtt.ERROR = log.New(logWriter{}, "", 0)
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", conf.Host, conf.Port))
	opts.ClientID = "nwrmonitor"
	opts.Username = conf.User
	opts.Password = conf.Password

	conn := mqtt.NewClient(opts)
	if token := conn.Connect(); !token.WaitTimeout(10 * time.Second) {
		return nil, token.Error()
	}
	return &mq{conn: conn, prefix: conf.Topic}, nil
}

// PublishJSON publishes a JSON-encoded message under prefix/topic.
func (m *mq) PublishJSON(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("cannot encode payload for %s: %s", topic, err)
		return
	}
	m.conn.Publish(m.prefix+"/"+topic, 1, false, data)
}

// PublishFields publishes a compact varint-encoded tuple of integers, for
// consumers that would rather not parse JSON for a handful of numbers (the
// duration and start timestamp of a decoded alert, in particular).
func (m *mq) PublishFields(topic string, fields []int) {
	m.conn.Publish(m.prefix+"/"+topic, 1, false, varint.Encode(fields))
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Print(string(p))
	return len(p), nil
}
