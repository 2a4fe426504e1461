package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
	"github.com/lottolabs/sortitio/pkg/validation"
)

const (
	// refreshInterval is how often the token list is re-fetched.
	refreshInterval = 15 * time.Minute

	fetchTimeout = 10 * time.Second
)

// TokenListResponse is the shape of the hosted token list.
type TokenListResponse struct {
	Tokens []models.Token `json:"tokens"`
}

// Service fetches and caches the token list used to resolve token
// symbols to mint addresses. Implements models.MintResolver.
type Service struct {
	logger  *logger.Logger
	baseURL string
	client  *http.Client

	cacheMutex sync.RWMutex
	tokenCache map[string]models.Token // keyed by upper-cased symbol

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates the registry and performs a first synchronous
// fetch. A fetch failure is not fatal: the registry starts empty and
// retries on the refresh ticker.
func NewService(baseURL string, log *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		logger:     log,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: fetchTimeout},
		tokenCache: make(map[string]models.Token),
		ctx:        ctx,
		cancel:     cancel,
	}
	if err := s.refresh(); err != nil {
		log.Warnw("initial token list fetch failed", "url", baseURL, "err", err)
	}
	s.wg.Add(1)
	go s.refreshLoop()
	return s
}

// Stop terminates the refresh loop.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

// ResolveMint maps a token symbol to its mint address.
func (s *Service) ResolveMint(token string) (solana.PublicKey, error) {
	s.cacheMutex.RLock()
	entry, ok := s.tokenCache[strings.ToUpper(strings.TrimSpace(token))]
	s.cacheMutex.RUnlock()
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("unknown token %q", token)
	}
	mint, err := validation.ParseAddress(entry.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("token %q has invalid mint %q: %w", token, entry.Mint, err)
	}
	return mint, nil
}

// Tokens returns a copy of the cached token list.
func (s *Service) Tokens() []models.Token {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	tokens := make([]models.Token, 0, len(s.tokenCache))
	for _, t := range s.tokenCache {
		tokens = append(tokens, t)
	}
	return tokens
}

func (s *Service) refreshLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.refresh(); err != nil {
				s.logger.Warnw("token list refresh failed", "err", err)
			}
		}
	}
}

func (s *Service) refresh() error {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return fmt.Errorf("build token list request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch token list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token list returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token list: %w", err)
	}
	var list TokenListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("parse token list: %w", err)
	}

	cache := make(map[string]models.Token, len(list.Tokens))
	for _, token := range list.Tokens {
		if token.Symbol == "" || token.Mint == "" {
			continue
		}
		cache[strings.ToUpper(token.Symbol)] = token
	}

	s.cacheMutex.Lock()
	s.tokenCache = cache
	s.cacheMutex.Unlock()
	s.logger.Debugw("token list refreshed", "tokens", len(cache))
	return nil
}
