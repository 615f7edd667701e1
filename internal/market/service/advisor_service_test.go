package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubAdvisor struct {
	text string
	err  error
}

func (s *stubAdvisor) Complete(ctx context.Context, prompt, contextText string) (string, error) {
	return s.text, s.err
}

// deadRedis returns a client pointing at nothing; every command errors,
// which the service must treat as a cache miss.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
}

func TestAdviseFallsBackWhenAdvisorUnavailable(t *testing.T) {
	svc := NewAdvisorService(&stubAdvisor{err: errors.New("connection refused")}, deadRedis())

	resp, err := svc.Advise(context.Background(), &AdviceRequest{Kind: "blend", Prompt: "espresso blend for milk drinks"})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if resp.Source != "fallback" {
		t.Errorf("source = %q, want fallback", resp.Source)
	}
	if resp.Text == "" {
		t.Error("fallback advice must not be empty")
	}

	// Same prompt picks the same canned answer.
	again, err := svc.Advise(context.Background(), &AdviceRequest{Kind: "blend", Prompt: "espresso blend for milk drinks"})
	if err != nil {
		t.Fatalf("advise again: %v", err)
	}
	if again.Text != resp.Text {
		t.Error("canned advice should be stable for the same prompt")
	}
}

func TestAdviseUsesLiveAnswer(t *testing.T) {
	svc := NewAdvisorService(&stubAdvisor{text: "Blend 80/20 washed and natural lots."}, deadRedis())

	resp, err := svc.Advise(context.Background(), &AdviceRequest{Kind: "pairing", Prompt: "what goes with dates"})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if resp.Source != "advisor" {
		t.Errorf("source = %q, want advisor", resp.Source)
	}
	if resp.Text != "Blend 80/20 washed and natural lots." {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestAdviseRejectsUnknownKind(t *testing.T) {
	svc := NewAdvisorService(&stubAdvisor{}, deadRedis())
	if _, err := svc.Advise(context.Background(), &AdviceRequest{Kind: "horoscope", Prompt: "x"}); err == nil {
		t.Fatal("unknown kind should error")
	}
}
