package rabbitmq

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Config describes the broker connection and the notification queue topology.
type Config struct {
	Host          string
	Port          int
	User          string
	Password      string
	VHost         string
	Prefetch      int
	Queue         string
	DialAttempts  int
	DialBackoff   time.Duration
	DeadLetterTTL time.Duration
}

// ConfigFromViper reads rabbitmq.* keys, filling in broker defaults.
func ConfigFromViper() Config {
	cfg := Config{
		Host:          viper.GetString("rabbitmq.host"),
		Port:          viper.GetInt("rabbitmq.port"),
		User:          viper.GetString("rabbitmq.user"),
		Password:      viper.GetString("rabbitmq.password"),
		VHost:         viper.GetString("rabbitmq.vhost"),
		Prefetch:      viper.GetInt("rabbitmq.prefetch"),
		Queue:         viper.GetString("rabbitmq.queue"),
		DialAttempts:  viper.GetInt("rabbitmq.dial_attempts"),
		DialBackoff:   time.Duration(viper.GetInt("rabbitmq.dial_backoff_seconds")) * time.Second,
		DeadLetterTTL: time.Duration(viper.GetInt("rabbitmq.dead_letter_ttl_hours")) * time.Hour,
	}
	if cfg.Host == "" {
		cfg.Host = "rabbitmq"
	}
	if cfg.Port == 0 {
		cfg.Port = 5672
	}
	if cfg.DialAttempts <= 0 {
		cfg.DialAttempts = 1
	}
	if cfg.DialBackoff == 0 {
		cfg.DialBackoff = 2 * time.Second
	}

	return cfg
}

// URL builds the amqp:// connection string with credentials escaped.
func (c Config) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.VHost,
	}

	return u.String()
}

// DeadLetterQueue names the queue rejected notifications are routed to.
func (c Config) DeadLetterQueue() string {
	return c.Queue + ".dead"
}

// Client owns one AMQP connection and the channel shared by publishers and consumers.
type Client struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel
}

// MustNewClient connects using rabbitmq.* config keys.
func MustNewClient() *Client {
	client, err := Dial(ConfigFromViper())
	if err != nil {
		panic(err)
	}

	return client
}

// Dial connects to the broker, retrying up to cfg.DialAttempts times.
func Dial(cfg Config) (*Client, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, err = amqp.Dial(cfg.URL())
		if err == nil {
			break
		}
		slog.Warn("RabbitMQ not reachable",
			"host", cfg.Host,
			"attempt", attempt,
			"error", err,
		)
		if attempt < cfg.DialAttempts {
			time.Sleep(cfg.DialBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if cfg.Prefetch > 0 {
		if err := channel.Qos(cfg.Prefetch, 0, false); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set qos: %w", err)
		}
	}

	slog.Info("RabbitMQ connected", "host", cfg.Host, "port", cfg.Port)

	return &Client{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
	}, nil
}

// Channel returns the underlying AMQP channel.
func (r *Client) Channel() *amqp.Channel {
	return r.channel
}

// NotificationQueue declares the durable notification queue together with
// its dead-letter queue. Deliveries nacked without requeue end up there.
func (r *Client) NotificationQueue() (amqp.Queue, error) {
	_, err := r.channel.QueueDeclare(r.cfg.DeadLetterQueue(), true, false, false, false, deadLetterArgs(r.cfg))
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare %s: %w", r.cfg.DeadLetterQueue(), err)
	}

	q, err := r.channel.QueueDeclare(r.cfg.Queue, true, false, false, false, notificationArgs(r.cfg))
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare %s: %w", r.cfg.Queue, err)
	}

	return q, nil
}

func notificationArgs(cfg Config) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.DeadLetterQueue(),
	}
}

func deadLetterArgs(cfg Config) amqp.Table {
	if cfg.DeadLetterTTL <= 0 {
		return nil
	}

	return amqp.Table{"x-message-ttl": cfg.DeadLetterTTL.Milliseconds()}
}

// Consume starts manual-ack delivery from queue under the consumer tag.
func (r *Client) Consume(queue, tag string) (<-chan amqp.Delivery, error) {
	return r.channel.Consume(queue, tag, false, false, false, false, nil)
}

// Cancel stops deliveries for a consumer tag.
func (r *Client) Cancel(tag string) error {
	return r.channel.Cancel(tag, false)
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}
