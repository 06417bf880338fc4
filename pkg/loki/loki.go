package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ErrorReporter receives failures of the background sender. It must not log through the pusher itself.
type ErrorReporter interface {
	Error(msg string, args ...any)
}

type Config struct {
	// Url of the push endpoint, e.g. https://example.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// TenantKey and TenantValue form an optional tenant header.
	TenantKey   string
	TenantValue string

	BatchMaxSize int           `validate:"gte=1"`
	BatchMaxWait time.Duration `validate:"gte=1"`

	// BufferSize bounds the queue between Push and the sender; entries beyond it are dropped.
	BufferSize int `validate:"gte=1"`

	Labels map[string]string

	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 4 * cfg.BatchMaxSize
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type LogEntry struct {
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Caller    string            `json:"caller,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"-"`
}

type Pusher struct {
	config   Config
	ctx      context.Context
	cancel   context.CancelFunc
	client   HTTPClient
	entries  chan LogEntry
	done     chan struct{}
	stopOnce sync.Once
	batch    [][]string
	reporter ErrorReporter

	mu      sync.Mutex
	stopped bool
	dropped int
}

type pushRequest struct {
	Streams []pushStream `json:"streams"`
}

type pushStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func New(ctx context.Context, cfg Config, reporter ErrorReporter) (*Pusher, error) {
	return NewWithClient(ctx, cfg, reporter, &http.Client{Timeout: 10 * time.Second})
}

func NewWithClient(ctx context.Context, cfg Config, reporter ErrorReporter, client HTTPClient) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
		client:   client,
		entries:  make(chan LogEntry, cfg.BufferSize),
		done:     make(chan struct{}),
		batch:    make([][]string, 0, cfg.BatchMaxSize),
		reporter: reporter,
	}

	go p.run()
	return p, nil
}

// Push enqueues the entry without blocking. It reports false when the entry was dropped.
func (p *Pusher) Push(e LogEntry) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}

	select {
	case p.entries <- e:
		return true
	default:
		p.dropped++
		return false
	}
}

func (p *Pusher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Stop flushes what is queued and waits for the sender to exit. Safe to call more than once.
func (p *Pusher) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.entries)
		p.mu.Unlock()
		<-p.done
		p.cancel()
	})
}

func (p *Pusher) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	flush := func() {
		if len(p.batch) == 0 {
			return
		}
		if err := p.send(p.batch); err != nil {
			p.reporter.Error("failed to send logs", "error", err, "lines", len(p.batch))
		}
		p.batch = p.batch[:0]
	}

	for {
		select {
		case <-p.ctx.Done():
			return
		case entry, ok := <-p.entries:
			if !ok {
				flush()
				return
			}
			if line, err := encodeLine(entry); err == nil {
				p.batch = append(p.batch, line)
			}
			if len(p.batch) >= p.config.BatchMaxSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func encodeLine(entry LogEntry) ([]string, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return []string{strconv.FormatInt(entry.Timestamp.UnixNano(), 10), string(body)}, nil
}

func (p *Pusher) send(lines [][]string) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)

	request := pushRequest{Streams: []pushStream{{Stream: p.config.Labels, Values: lines}}}
	if err := json.NewEncoder(gz).Encode(request); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(p.ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if p.config.TenantKey != "" {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected response code from loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
