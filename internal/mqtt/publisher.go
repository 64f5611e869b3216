package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"dream-tool/internal/assessor"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// client is the part of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

type Publisher struct {
	client      client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

// Message is one MQTT publication.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Warn().Err(err).Msg("MQTT connection lost")
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Info().Str("broker", cfg.Broker).Msg("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(c, cfg.TopicPrefix), nil
}

func newPublisher(c client, topicPrefix string) *Publisher {
	return &Publisher{client: c, topicPrefix: topicPrefix, enabled: true}
}

// Publish sends the headline figures of rec as scalar topics, followed by
// the full record as a retained JSON document.
func (p *Publisher) Publish(rec *assessor.Record) error {
	if !p.enabled {
		return nil
	}

	msgs, err := Messages(p.topicPrefix, rec)
	if err != nil {
		return err
	}

	last := len(msgs) - 1
	for i, m := range msgs {
		token := p.client.Publish(m.Topic, 0, m.Retained, m.Payload)
		token.Wait()
		if token.Error() == nil {
			continue
		}
		if i == last {
			return fmt.Errorf("failed to publish assessment: %w", token.Error())
		}
		log.Warn().Err(token.Error()).Str("topic", m.Topic).Msg("failed to publish")
	}
	return nil
}

// Messages builds the publications for rec under
// <prefix>/<facility-slug>/. The retained JSON document is always last.
func Messages(prefix string, rec *assessor.Record) ([]Message, error) {
	base := fmt.Sprintf("%s/%s", prefix, Slug(rec.FacilityName))

	systems := []struct {
		name string
		r    map[string]interface{}
	}{
		{"pv", map[string]interface{}{
			"initial_cost":   rec.Result.PV.InitialCost,
			"lifecycle_cost": rec.Result.PV.LifecycleCost,
			"npv":            rec.Result.PV.NPV,
			"irr":            rec.Result.PV.IRR.Rate,
			"irr_status":     rec.Result.PV.IRR.Status,
		}},
		{"diesel", map[string]interface{}{
			"initial_cost":   rec.Result.Diesel.InitialCost,
			"lifecycle_cost": rec.Result.Diesel.LifecycleCost,
			"npv":            rec.Result.Diesel.NPV,
			"irr":            rec.Result.Diesel.IRR.Rate,
			"irr_status":     rec.Result.Diesel.IRR.Status,
		}},
	}

	var msgs []Message
	for _, s := range systems {
		for _, name := range []string{"initial_cost", "lifecycle_cost", "npv", "irr", "irr_status"} {
			msgs = append(msgs, Message{
				Topic:   fmt.Sprintf("%s/%s/%s", base, s.name, name),
				Payload: []byte(fmt.Sprintf("%v", s.r[name])),
			})
		}
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assessment: %w", err)
	}
	msgs = append(msgs, Message{Topic: base + "/assessment", Payload: doc, Retained: true})

	return msgs, nil
}

// Slug lowercases name and collapses every run of other characters into a
// single dash, so that it is safe as one MQTT topic level.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "unnamed"
	}
	return s
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
