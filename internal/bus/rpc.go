package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Envelope is the wire format for every request and reply on the bus.
type Envelope struct {
	CorrelationID string          `json:"correlation_id"`
	Kind          string          `json:"kind"`
	ReplyTo       string          `json:"reply_to,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         *RemoteError    `json:"error,omitempty"`
}

type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Client sends a request envelope and waits for exactly one correlated reply
// on its reply topic, or a timeout.
type Client struct {
	producer   Publisher
	replyTopic string

	mu      sync.Mutex
	pending map[string]chan Envelope
}

func NewClient(producer Publisher, replyTopic string) *Client {
	return &Client{
		producer:   producer,
		replyTopic: replyTopic,
		pending:    make(map[string]chan Envelope),
	}
}

// Run consumes the reply topic and routes envelopes to waiting calls. Replies
// with no pending call (another instance's, or after a timeout) are dropped.
func (c *Client) Run(ctx context.Context, consumer *Consumer) error {
	return consumer.Consume(ctx, func(_ context.Context, msg kafka.Message) error {
		var env Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			log.Printf("drop undecodable reply: %v", err)
			return nil
		}
		c.deliver(env)
		return nil
	})
}

func (c *Client) deliver(env Envelope) {
	c.mu.Lock()
	ch, ok := c.pending[env.CorrelationID]
	if ok {
		delete(c.pending, env.CorrelationID)
	}
	c.mu.Unlock()
	if ok {
		ch <- env
	}
}

func (c *Client) register(id string) chan Envelope {
	ch := make(chan Envelope, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Call publishes a request of the given kind to topic and blocks until the
// correlated reply arrives or timeout elapses. A timeout surfaces as
// ErrTimeout; a send or marshal failure as *TransportError.
func (c *Client) Call(ctx context.Context, topic, kind string, payload interface{}, timeout time.Duration) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Kind: kind, Err: err}
	}

	id := uuid.NewString()
	ch := c.register(id)
	defer c.forget(id)

	env := Envelope{
		CorrelationID: id,
		Kind:          kind,
		ReplyTo:       c.replyTopic,
		Payload:       data,
	}
	if err := c.producer.Publish(ctx, topic, id, env); err != nil {
		return nil, &TransportError{Kind: kind, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return nil, errorFromCode(reply.Error.Code, reply.Error.Message)
		}
		return reply.Payload, nil
	case <-timer.C:
		return nil, fmt.Errorf("%s: %w", kind, ErrTimeout)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", kind, ErrTimeout)
		}
		return nil, &TransportError{Kind: kind, Err: ctx.Err()}
	}
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// Server consumes a request topic and dispatches envelopes by kind, publishing
// a correlated reply for each request that carries a reply_to.
type Server struct {
	producer Publisher
	handlers map[string]HandlerFunc
}

func NewServer(producer Publisher) *Server {
	return &Server{
		producer: producer,
		handlers: make(map[string]HandlerFunc),
	}
}

func (s *Server) Handle(kind string, fn HandlerFunc) {
	s.handlers[kind] = fn
}

// MessageSource is the fetch/commit side of a Consumer.
type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Run fetches requests and handles each on its own goroutine, so one handler
// blocking in a downstream call never holds up the rest of the topic. The
// offset is committed once the handler finishes.
func (s *Server) Run(ctx context.Context, source MessageSource) error {
	for {
		msg, err := source.Fetch(ctx)
		if err != nil {
			return err
		}

		go func(msg kafka.Message) {
			if err := s.handleMessage(ctx, msg.Value); err != nil {
				log.Printf("handle %s message: %v", msg.Topic, err)
			}
			if err := source.Commit(ctx, msg); err != nil {
				log.Printf("commit %s offset: %v", msg.Topic, err)
			}
		}(msg)
	}
}

func (s *Server) handleMessage(ctx context.Context, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("drop undecodable request: %v", err)
		return nil
	}

	fn, ok := s.handlers[env.Kind]
	if !ok {
		log.Printf("no handler for kind %q", env.Kind)
		return nil
	}

	reply := Envelope{
		CorrelationID: env.CorrelationID,
		Kind:          env.Kind + ".reply",
	}
	result, err := fn(ctx, env.Payload)
	if err != nil {
		reply.Error = &RemoteError{Code: codeForError(err), Message: err.Error()}
	} else {
		data, err := json.Marshal(result)
		if err != nil {
			reply.Error = &RemoteError{Code: codeInternal, Message: err.Error()}
		} else {
			reply.Payload = data
		}
	}

	if env.ReplyTo == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, env.ReplyTo, env.CorrelationID, reply); err != nil {
		log.Printf("publish reply for %s failed: %v", env.Kind, err)
	}
	return nil
}
