package emailsvc

import (
	"sync"

	"github.com/trezcool/shule/core"
)

var (
	// SentMessages records every message sent through the mock service.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type mockService struct{}

var _ core.EmailService = (*mockService)(nil)

// NewMockService returns an EmailService that only records messages;
// it sends synchronously so tests can assert on SentMessages right away.
func NewMockService() core.EmailService {
	return &mockService{}
}

func (svc mockService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			continue
		}
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

// ResetSentMessages clears the record between tests.
func ResetSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
