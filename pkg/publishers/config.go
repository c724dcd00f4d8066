package publishers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-httpclient/internal/fileconf"
	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
)

// Supported publisher types.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const (
	httpDefaultMethod         = httpclient.MethodPost
	httpDefaultTimeoutSeconds = 5
)

// Config is one entry of the publishers file. Exactly the block matching Type is read.
type Config struct {
	ID      string        `json:"id" yaml:"id"`
	Type    string        `json:"type" yaml:"type"`
	Enabled *bool         `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPConfig   `json:"http" yaml:"http"`
	SQS     *SQSConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPConfig describes a webhook. Method defaults to POST and the timeout to 5s.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSConfig names the queue events are sent to.
type SQSConfig struct {
	QueueURL string `json:"uri" yaml:"uri"`
	Region   string `json:"region" yaml:"region"`
}

// SNSConfig names the topic events are published to.
type SNSConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn"`
	Region   string `json:"region" yaml:"region"`
}

// PubSubConfig names a Google Cloud Pub/Sub topic. Without CredentialsFile the
// client falls back to application default credentials.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// IsEnabled reports whether the entry should be built. Entries are enabled unless set to false.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Load reads the publishers file and returns its enabled entries in file order.
// Disabled entries are still validated.
func Load(path string) ([]Config, error) {
	var file struct {
		Publishers []Config `json:"publishers" yaml:"publishers"`
	}
	if err := fileconf.Load(path, "publishers", &file); err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(file.Publishers))
	enabled := make([]Config, 0, len(file.Publishers))
	for i, raw := range file.Publishers {
		cfg, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		if cfg.IsEnabled() {
			enabled = append(enabled, cfg)
		}
	}
	return enabled, nil
}

// normalize trims the entry, applies defaults and checks the block for its type.
func (c Config) normalize() (Config, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.ID == "" {
		return c, errors.New("id is required")
	}

	var err error
	switch c.Type {
	case "":
		return c, fmt.Errorf("type is required for publisher %q", c.ID)
	case TypeHTTP:
		if c.HTTP == nil {
			return c, fmt.Errorf("http config required for publisher %q", c.ID)
		}
		c.HTTP, err = c.HTTP.normalize()
	case TypeSQS:
		if c.SQS == nil {
			return c, fmt.Errorf("sqs config required for publisher %q", c.ID)
		}
		c.SQS, err = c.SQS.normalize()
	case TypeSNS:
		if c.SNS == nil {
			return c, fmt.Errorf("sns config required for publisher %q", c.ID)
		}
		c.SNS, err = c.SNS.normalize()
	case TypePubSub:
		if c.PubSub == nil {
			return c, fmt.Errorf("pubsub config required for publisher %q", c.ID)
		}
		c.PubSub, err = c.PubSub.normalize()
	}
	if err != nil {
		return c, fmt.Errorf("publisher %q: %w", c.ID, err)
	}
	return c, nil
}

// normalize returns a trimmed copy with the method, timeout and header defaults applied.
func (h *HTTPConfig) normalize() (*HTTPConfig, error) {
	c := *h
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = string(httpDefaultMethod)
	}
	c.Headers = fileconf.Headers(c.Headers)
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}

	if c.URL == "" {
		return nil, errors.New("http.url is required")
	}
	if _, err := httpclient.ParseMethod(c.Method); err != nil {
		return nil, fmt.Errorf("http.method: %w", err)
	}
	return &c, nil
}

// normalize returns a trimmed copy and requires the queue url and region.
func (s *SQSConfig) normalize() (*SQSConfig, error) {
	c := SQSConfig{QueueURL: strings.TrimSpace(s.QueueURL), Region: strings.TrimSpace(s.Region)}
	if c.QueueURL == "" {
		return nil, errors.New("sqs.uri is required")
	}
	if c.Region == "" {
		return nil, errors.New("sqs.region is required")
	}
	return &c, nil
}

// normalize returns a trimmed copy and requires the topic arn and region.
func (s *SNSConfig) normalize() (*SNSConfig, error) {
	c := SNSConfig{TopicARN: strings.TrimSpace(s.TopicARN), Region: strings.TrimSpace(s.Region)}
	if c.TopicARN == "" {
		return nil, errors.New("sns.topic_arn is required")
	}
	if c.Region == "" {
		return nil, errors.New("sns.region is required")
	}
	return &c, nil
}

// normalize returns a trimmed copy and requires the project and topic.
func (p *PubSubConfig) normalize() (*PubSubConfig, error) {
	c := PubSubConfig{
		ProjectID:       strings.TrimSpace(p.ProjectID),
		Topic:           strings.TrimSpace(p.Topic),
		CredentialsFile: strings.TrimSpace(p.CredentialsFile),
	}
	if c.ProjectID == "" {
		return nil, errors.New("pubsub.project_id is required")
	}
	if c.Topic == "" {
		return nil, errors.New("pubsub.topic is required")
	}
	return &c, nil
}
