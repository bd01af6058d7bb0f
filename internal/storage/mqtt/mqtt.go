// Package mqtt publishes dose readings to an MQTT broker so dashboards and
// home-automation consumers can subscribe to live exposure data.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
)

const defaultTopicPrefix = "uvmon/readings"

// Storage publishes readings to an MQTT broker, one retained JSON message
// per device topic.
type Storage struct {
	client pahomqtt.Client
	topic  string
}

// New connects to the broker configured in c.
func New(c *config.MQTTData) (*Storage, error) {
	clientID := c.ClientID
	if clientID == "" {
		clientID = "uvmon"
	}
	topic := c.Topic
	if topic == "" {
		topic = defaultTopicPrefix
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(c.Username)
	opts.SetPassword(c.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warnf("MQTT connection lost: %v", err)
	})

	client := pahomqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	log.Info("connected to MQTT broker:", c.Broker)

	return &Storage{client: client, topic: topic}, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and
// publish them to the broker
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting MQTT storage engine...")
	readingChan := make(chan types.Reading, 10)
	go s.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (s *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.PublishReading(r); err != nil {
				log.Error("could not publish reading:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling MQTT publisher.")
			s.client.Disconnect(250)
			return
		}
	}
}

// PublishReading publishes one reading as retained JSON on the device topic.
// Retained so a dashboard connecting mid-session immediately sees the
// current dose.
func (s *Storage) PublishReading(r types.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("could not marshal reading: %w", err)
	}
	topic := fmt.Sprintf("%s/%s", s.topic, r.DeviceName)
	token := s.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}
