package mefoundation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionMerge(t *testing.T) {
	t.Run("CommaJoinedEntries", func(t *testing.T) {
		s := NewSession()
		s.Merge("a=1, b=2; Path=/, c=3")
		assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, s.Snapshot())
		assert.Equal(t, "a=1; b=2; c=3", s.Header())
	})

	t.Run("Idempotent", func(t *testing.T) {
		header := "session_signature=abc; Path=/; HttpOnly, me_uid=42; Expires=Wed, 21 Oct 2026 07:28:00 GMT"
		once := NewSession()
		once.Merge(header)
		twice := NewSession()
		twice.Merge(header)
		twice.Merge(header)
		assert.Equal(t, once.Snapshot(), twice.Snapshot())
		assert.Equal(t, once.Header(), twice.Header())
	})

	t.Run("ExpiresCommaIsNotASeparator", func(t *testing.T) {
		s := NewSession()
		s.Merge("sid=x1; Expires=Wed, 21 Oct 2026 07:28:00 GMT; Secure, theme=dark")
		assert.Equal(t, map[string]string{"sid": "x1", "theme": "dark"}, s.Snapshot())
	})

	t.Run("MalformedEntriesSkipped", func(t *testing.T) {
		s := NewSession()
		s.Merge("good=1, empty=; Path=/, ok=2")
		s.Merge("novalue")
		s.Merge("=nokey")
		s.Merge("")
		assert.Equal(t, map[string]string{"good": "1", "ok": "2"}, s.Snapshot())
	})

	t.Run("ValueKeepsEquals", func(t *testing.T) {
		s := NewSession()
		s.Merge("token=abc==; Path=/")
		v, ok := s.Get("token")
		assert.True(t, ok)
		assert.Equal(t, "abc==", v)
	})

	t.Run("UpdateKeepsOrder", func(t *testing.T) {
		s := NewSession()
		s.Merge("a=1, b=2")
		s.Merge("a=9")
		assert.Equal(t, "a=9; b=2", s.Header())
		assert.Equal(t, []string{"a", "b"}, s.Keys())
	})
}

func TestSessionConcurrentMerge(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Merge("a=1, b=2")
			_ = s.Header()
		}()
	}
	wg.Wait()
	assert.Equal(t, "a=1; b=2", s.Header())
}
