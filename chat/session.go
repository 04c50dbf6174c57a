package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/meysamhadeli/revai/gateway"
	"github.com/meysamhadeli/revai/gateway/contracts"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
	"github.com/meysamhadeli/revai/storage"
	"github.com/sirupsen/logrus"
)

var (
	ErrBusy           = errors.New("chat: a reply is still pending")
	ErrEmptyUtterance = errors.New("chat: empty message")
)

// SnapshotSource supplies the project content injected as context on every turn.
type SnapshotSource interface {
	Snapshot() project.Snapshot
}

// Session is one persisted conversation. Only one turn may be in flight at a time.
type Session struct {
	gateway contracts.IAnalysisGateway
	source  SnapshotSource
	value   *storage.Value[[]models.ChatMessage]

	mu       sync.Mutex
	opts     models.Options
	messages []models.ChatMessage
	busy     bool
	epoch    uint64
	lastErr  error
}

// NewSession loads the stored transcript, starting empty when it is absent or corrupt.
func NewSession(gw contracts.IAnalysisGateway, source SnapshotSource, store storage.Store, opts models.Options) *Session {
	s := &Session{
		gateway: gw,
		source:  source,
		value:   storage.NewValue[[]models.ChatMessage](store, storage.KeyChatHistory),
		opts:    opts,
	}
	s.messages, _ = s.value.Load()
	return s
}

// Send appends the utterance, asks the model with the prior transcript and appends the reply.
// On failure the user message stays and no reply is appended.
func (s *Session) Send(ctx context.Context, utterance string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", ErrEmptyUtterance
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	history := append([]models.ChatMessage(nil), s.messages...)
	s.messages = append(s.messages, models.ChatMessage{Role: models.ChatRoleUser, Text: utterance})
	s.persistLocked()
	s.busy = true
	epoch := s.epoch
	opts := s.opts
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	var snapshot project.Snapshot
	if s.source != nil {
		snapshot = s.source.Snapshot()
	}
	reply, err := s.gateway.Chat(ctx, history, utterance, gateway.ChatContext(snapshot), opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = fmt.Errorf("chat failed: %w", err)
		return "", s.lastErr
	}
	s.lastErr = nil
	if epoch != s.epoch {
		logrus.Debug("discarding chat reply for a cleared transcript")
		return reply, nil
	}
	s.messages = append(s.messages, models.ChatMessage{Role: models.ChatRoleAssistant, Text: reply})
	s.persistLocked()
	return reply, nil
}

// Clear empties the transcript and removes it from storage.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.epoch++
	s.lastErr = nil
	return s.value.Delete()
}

func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) SetOptions(opts models.Options) {
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
}

func (s *Session) persistLocked() {
	if err := s.value.Save(s.messages); err != nil {
		logrus.WithError(err).Warn("failed to persist chat transcript")
	}
}
