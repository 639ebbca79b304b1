package testutil

import (
	"fmt"
	"sync"
	"time"
	"tripgen/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu          sync.Mutex
	Requests    map[string]int
	CacheHits   map[string]int
	CacheMisses map[string]int
	Generations map[string]int // key: "version:status"
	Saves       map[string]int // key: "version:status"
	RateLimited map[string]int
	Tokens      map[string][2]int
	StoreOps    map[string]int
	PlansTotal  map[string]int64
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:    make(map[string]int),
		CacheHits:   make(map[string]int),
		CacheMisses: make(map[string]int),
		Generations: make(map[string]int),
		Saves:       make(map[string]int),
		RateLimited: make(map[string]int),
		Tokens:      make(map[string][2]int),
		StoreOps:    make(map[string]int),
		PlansTotal:  make(map[string]int64),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[fmt.Sprintf("%s:%d", endpoint, status)]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits[kind]++
}

func (m *MockMetrics) IncCacheMisses(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses[kind]++
}

func (m *MockMetrics) IncGenerations(version string, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Generations[version+":"+status]++
}

func (m *MockMetrics) AddTokens(provider string, input, output int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.Tokens[provider]
	m.Tokens[provider] = [2]int{t[0] + input, t[1] + output}
}

func (m *MockMetrics) IncRateLimited(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimited[tier]++
}

func (m *MockMetrics) IncSaves(version string, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves[version+":"+status]++
}

func (m *MockMetrics) ObserveStoreDuration(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreOps[op]++
}

func (m *MockMetrics) SetPlansTotal(version string, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlansTotal[version] = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}
