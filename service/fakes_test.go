package service

import (
	"context"
	"errors"
	"sync"

	"github.com/raushankrgupta/fragrance-collection/models"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://bucket.example/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeTagger struct {
	tags []string
	err  error
}

func (t *fakeTagger) TagImage(context.Context, []byte) ([]string, error) {
	return t.tags, t.err
}

type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
	calls       int
}

func (f *fakeFetcher) FetchImage(context.Context, string) ([]byte, string, error) {
	f.calls++
	return f.data, f.contentType, f.err
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendEmail(_ context.Context, _, toEmail, subject, _, _ string) error {
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject})
	return m.err
}

type fakeModel struct {
	reply   string
	err     error
	history []models.ChatMessage
	message string
}

func (m *fakeModel) Reply(_ context.Context, history []models.ChatMessage, message string) (string, error) {
	m.history = history
	m.message = message
	return m.reply, m.err
}

var errBoom = errors.New("boom")
