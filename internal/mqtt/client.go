// Package mqtt publishes readings to an MQTT broker, with optional Home
// Assistant discovery.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"purpleair_display/internal/config"
	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
)

const (
	discoveryPrefix = "homeassistant"
	publishTimeout  = 5 * time.Second
	offlineTimeout  = 2 * time.Second
	connectWait     = 3 * time.Second
	disconnectQuiet = 250 // ms

	payloadOnline  = "online"
	payloadOffline = "offline"
)

// ErrNotConnected is returned by Publish while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt: not connected")

type Client struct {
	client      paho.Client
	broker      string
	prefix      string
	nodeID      string
	discovery   bool
	connectWait time.Duration
	log         *logger.Logger
}

// NewClient builds a client with automatic reconnects. It returns nil when
// MQTT is disabled; all methods accept a nil receiver.
func NewClient(cfg config.MQTT, hostLabel string, log *logger.Logger) *Client {
	if !cfg.Enabled {
		return nil
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "purpleair-" + hostLabel
	}
	c := &Client{
		broker:      cfg.Broker,
		prefix:      strings.Trim(cfg.TopicPrefix, "/"),
		nodeID:      safeID(clientID),
		discovery:   cfg.HADiscovery,
		connectWait: connectWait,
		log:         log,
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(10 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	// keep retrying at startup so a late broker does not abort the daemon
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetWill(c.topic("availability"), payloadOffline, 1, true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		if c.log != nil {
			c.log.Warnw("mqtt connection lost", "error", err)
		}
	})

	c.client = paho.NewClient(opts)
	return c
}

// Connect starts the connection loop and waits up to connectWait for the
// first handshake. An unreachable broker is not an error: paho keeps
// retrying in the background and onConnect runs once it succeeds.
func (c *Client) Connect() error {
	if c == nil {
		return nil
	}
	if c.log != nil {
		c.log.Infow("mqtt connecting", "broker", c.broker)
	}
	token := c.client.Connect()
	if !token.WaitTimeout(c.connectWait) {
		if c.log != nil {
			c.log.Warnw("mqtt broker not reachable yet, retrying in background", "broker", c.broker)
		}
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Disconnect publishes the offline status and closes the connection.
func (c *Client) Disconnect() {
	if c == nil || !c.client.IsConnected() {
		return
	}
	token := c.client.Publish(c.topic("availability"), 1, true, payloadOffline)
	if !token.WaitTimeout(offlineTimeout) && c.log != nil {
		c.log.Warnw("mqtt timed out publishing offline status")
	}
	c.client.Disconnect(disconnectQuiet)
}

// Publish writes the reading as retained JSON to <prefix>/state and the
// bare AQI to <prefix>/aqi.
func (c *Client) Publish(ctx context.Context, r models.Reading) error {
	if c == nil {
		return nil
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	state, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	if err := c.publish(ctx, "state", state, true); err != nil {
		return err
	}
	return c.publish(ctx, "aqi", []byte(strconv.Itoa(r.AQI)), true)
}

func (c *Client) publish(ctx context.Context, sub string, payload []byte, retained bool) error {
	topic := c.topic(sub)
	token := c.client.Publish(topic, 0, retained, payload)

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish %s: timed out", topic)
	}
}

// onConnect runs on paho's event goroutine.
func (c *Client) onConnect(client paho.Client) {
	if c.log != nil {
		c.log.Infow("mqtt connected", "broker", c.broker)
	}
	client.Publish(c.topic("availability"), 1, true, payloadOnline)
	if !c.discovery {
		return
	}
	for topic, payload := range c.discoveryConfigs() {
		client.Publish(topic, 1, true, payload)
	}
}

func (c *Client) topic(sub string) string {
	if c.prefix == "" {
		return sub
	}
	return c.prefix + "/" + sub
}
