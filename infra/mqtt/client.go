package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/focusplan/core/events"
	coremon "github.com/kilianp07/focusplan/core/monitoring"
	coremqtt "github.com/kilianp07/focusplan/core/mqtt"
	"github.com/kilianp07/focusplan/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	// TopicPrefix roots published events: <prefix>/<user>/<kind>.
	TopicPrefix string `json:"topic_prefix"`
	// InvalidateTopic receives energy profile invalidations. The user id is
	// read from the payload or, failing that, the second topic segment.
	InvalidateTopic string          `json:"invalidate_topic"`
	UseTLS          bool            `json:"use_tls"`
	ClientCert      string          `json:"client_cert"`
	ClientKey       string          `json:"client_key"`
	CABundle        string          `json:"ca_bundle"`
	AuthMethod      string          `json:"auth_method"`
	QoS             map[string]byte `json:"qos"`
	LWTTopic        string          `json:"lwt_topic"`
	LWTPayload      string          `json:"lwt_payload"`
	LWTQoS          byte            `json:"lwt_qos"`
	LWTRetain       bool            `json:"lwt_retain"`
	MaxRetries      int             `json:"max_retries"`
	BackoffMS       int             `json:"backoff_ms"`
	TLSConfig       *tls.Config     `json:"-"`
}

// SetDefaults fills the topic layout and client id.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "focusplan"
	}
	if c.InvalidateTopic == "" {
		c.InvalidateTopic = c.TopicPrefix + "/+/energy/invalidate"
	}
	if c.ClientID == "" {
		c.ClientID = "focusplan-" + uuid.NewString()[:8]
	}
}

// Validate checks mandatory fields when the client is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes scheduling events and listens for profile
// invalidations using Eclipse Paho.
type PahoClient struct {
	cli          pahoClient
	prefix       string
	invalidate   string
	qos          map[string]byte
	onInvalidate func(userID string)
	logger       logger.Logger
	maxRetries   int
	backoff      time.Duration
}

var _ coremqtt.Publisher = (*PahoClient)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the broker. When onInvalidate is non-nil the
// client subscribes to the invalidation topic on every (re)connect.
func NewPahoClient(cfg Config, onInvalidate func(userID string)) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:       strings.TrimSuffix(cfg.TopicPrefix, "/"),
		invalidate:   cfg.InvalidateTopic,
		qos:          cfg.QoS,
		onInvalidate: onInvalidate,
		logger:       log,
		maxRetries:   cfg.MaxRetries,
		backoff:      time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if pc.onInvalidate == nil {
			return
		}
		if token := c.Subscribe(pc.invalidate, pc.qosFor("invalidate"), pc.onInvalidateMsg); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) onInvalidateMsg(_ paho.Client, msg paho.Message) {
	var m struct {
		UserID string `json:"user_id"`
	}
	if len(msg.Payload()) > 0 {
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			p.logger.Warnf("failed to decode invalidation: %v", err)
		}
	}
	if m.UserID == "" {
		if parts := strings.Split(msg.Topic(), "/"); len(parts) > 1 {
			m.UserID = parts[1]
		}
	}
	if m.UserID == "" {
		p.logger.Warnf("invalidation without user on %s", msg.Topic())
		return
	}
	p.logger.Infof("energy profile invalidated for %s", m.UserID)
	p.onInvalidate(m.UserID)
}

// Topic returns the topic an event is published on.
func (p *PahoClient) Topic(ev events.Event) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, ev.User(), ev.Kind())
}

// PublishEvent publishes ev as JSON, retrying with exponential backoff.
// The last failure is reported to the error monitor.
func (p *PahoClient) PublishEvent(ev events.Event) error {
	if p.cli == nil {
		return coremqtt.ErrNotConnected
	}
	payload, err := json.Marshal(struct {
		Kind  string       `json:"kind"`
		Event events.Event `json:"event"`
	}{Kind: ev.Kind(), Event: ev})
	if err != nil {
		return err
	}
	topic := p.Topic(ev)
	qos := p.qosFor("event")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s event to %s", ev.Kind(), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	tags := coremon.UserTags("mqtt", ev.User())
	tags["kind"] = ev.Kind()
	coremon.CaptureException(publishErr, tags)
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
