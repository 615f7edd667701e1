package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/beanlink/beanlink/internal/shared/advisor"
	"github.com/redis/go-redis/v9"
)

// AdvisorClient is what the service calls out to; tests swap in a stub.
type AdvisorClient interface {
	Complete(ctx context.Context, prompt, contextText string) (string, error)
}

// AdvisorService blend and pairing suggestions with canned fallback
type AdvisorService struct {
	client AdvisorClient
	rdb    *redis.Client
}

func NewAdvisorService(client AdvisorClient, rdb *redis.Client) *AdvisorService {
	return &AdvisorService{client: client, rdb: rdb}
}

// AdviceRequest advisor question payload
type AdviceRequest struct {
	Kind    string `json:"kind" binding:"required"` // blend/pairing
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

// AdviceResponse advisor answer
type AdviceResponse struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Source string `json:"source"` // advisor/fallback/cache
}

// Canned suggestions served when the advisor is unreachable. Picked by a
// stable hash of the prompt so repeat questions get the same answer.
var cannedBlends = []string{
	"Try a 70/30 base of washed Ethiopian with a natural Brazilian for a balanced espresso blend with berry sweetness.",
	"A 60/40 mix of Colombian and Yemeni lots gives body with winey acidity; roast to medium for milk drinks.",
	"Blend 50% Jazan natural with 50% washed Kenyan for a bright filter profile; keep the roast light.",
}

var cannedPairings = []string{
	"A light-roast washed coffee with citrus acidity pairs well with date-based desserts and mild cheeses.",
	"Medium-roast naturals with berry notes complement dark chocolate and cardamom pastries.",
	"Dark roasts with low acidity suit cream desserts and spiced kunafa.",
}

// Advise answers a question, preferring cache, then the live advisor,
// then canned text. Advisor failures never surface to the caller.
func (s *AdvisorService) Advise(ctx context.Context, req *AdviceRequest) (*AdviceResponse, error) {
	kind := req.Kind
	if kind != "blend" && kind != "pairing" {
		return nil, fmt.Errorf("unknown advice kind: %s", kind)
	}

	cacheKey := adviceCacheKey(kind, req.Prompt)
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		return &AdviceResponse{Kind: kind, Text: cached, Source: "cache"}, nil
	}

	text, err := s.client.Complete(ctx, req.Prompt, req.Context)
	if err != nil {
		log.Printf("[advisor] falling back to canned %s advice: %v", kind, err)
		return &AdviceResponse{Kind: kind, Text: cannedAdvice(kind, req.Prompt), Source: "fallback"}, nil
	}

	s.rdb.Set(ctx, cacheKey, text, 24*time.Hour)
	return &AdviceResponse{Kind: kind, Text: text, Source: "advisor"}, nil
}

func adviceCacheKey(kind, prompt string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	return "advisor:" + kind + ":" + hex.EncodeToString(sum[:8])
}

func cannedAdvice(kind, prompt string) string {
	pool := cannedBlends
	if kind == "pairing" {
		pool = cannedPairings
	}
	sum := sha256.Sum256([]byte(prompt))
	return pool[int(sum[0])%len(pool)]
}

// compile-time check that the real client satisfies the interface
var _ AdvisorClient = (*advisor.Client)(nil)
