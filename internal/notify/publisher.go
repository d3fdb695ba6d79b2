package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Publisher pushes notifications to an external channel.
type Publisher interface {
	Publish(ctx context.Context, notifications []models.Notification) (int, error)
	Close()
}

// NopPublisher discards every notification.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []models.Notification) (int, error) { return 0, nil }
func (NopPublisher) Close()                                                      {}

// ConnectMQTT dials the broker and waits for the connection to be acknowledged.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("Connected to MQTT broker")
	return client, nil
}

// MQTTPublisher publishes critical and warning notifications as JSON to
// <prefix>/<type>. Each id is published once per process.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	qos    byte

	mu   sync.Mutex
	seen map[string]bool
}

// NewMQTTPublisher wraps a connected client.
func NewMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	if prefix == "" {
		prefix = "fleet/notifications"
	}
	return &MQTTPublisher{client: client, prefix: prefix, qos: 1, seen: make(map[string]bool)}
}

// Topic returns the topic a notification type is published to.
func (p *MQTTPublisher) Topic(t models.NotificationType) string {
	return p.prefix + "/" + string(t)
}

// Publish sends notifications not seen before and returns how many were sent.
// A failed publish is retried on the next call.
func (p *MQTTPublisher) Publish(ctx context.Context, notifications []models.Notification) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sent := 0
	for _, n := range notifications {
		if n.Type != models.NotificationCritical && n.Type != models.NotificationWarning {
			continue
		}
		if p.seen[n.ID] {
			continue
		}
		payload, err := json.Marshal(n)
		if err != nil {
			return sent, fmt.Errorf("encode notification %s: %w", n.ID, err)
		}
		token := p.client.Publish(p.Topic(n.Type), p.qos, false, payload)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return sent, ctx.Err()
		}
		if err := token.Error(); err != nil {
			return sent, fmt.Errorf("publish notification %s: %w", n.ID, err)
		}
		p.seen[n.ID] = true
		sent++
		log.WithFields(log.Fields{"id": n.ID, "topic": p.Topic(n.Type)}).Debug("Published notification")
	}
	return sent, nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
