package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

// Publisher pushes maintenance recommendations to interested
// subscribers (ops dashboards, alerting).
type Publisher interface {
	PublishRecommendation(rec models.Recommendation) error
}

// AlertWorthy reports whether a recommendation's priority justifies a
// broker alert. Low and medium items only show up via the API.
func AlertWorthy(p models.Priority) bool {
	return p == models.PriorityHigh || p == models.PriorityCritical
}

// alertTopic builds the per-vehicle alert topic.
func alertTopic(vehicleID string) string {
	return fmt.Sprintf("maintenance/alerts/%s", vehicleID)
}

// MQTTPublisher publishes recommendations to an MQTT broker at QoS 1.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}

	return &MQTTPublisher{client: client}, nil
}

// PublishRecommendation sends the recommendation as JSON to the
// vehicle's alert topic.
func (p *MQTTPublisher) PublishRecommendation(rec models.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}

	token := p.client.Publish(alertTopic(rec.VehicleID), 1, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher discards recommendations. Used when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishRecommendation(models.Recommendation) error { return nil }
