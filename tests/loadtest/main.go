package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8080", "tripgen base url")
	numWorkers   = flag.Int("workers", 50, "concurrent workers")
	testDuration = flag.Duration("duration", 10*time.Second, "duration of each phase")
)

var prefixes = []string{"", "/v2", "/v3"}

var samples = map[string]string{
	"": `{"title":"Tokyo %d","target":"engineer","days":[{"day":1,"events":[` +
		`["09:00","Shibuya","Walk","spot",null,null],["12:00","Afuri","Ramen","food","",null]]}]}`,
	"/v2": `{"mission_title":"Osaka %d","intro":"Go.","target_spot":{"name":"Dotonbori","map_query":"Dotonbori"},` +
		`"atmosphere":"Loud","quests":[{"title":"A","description":"a","gear":"x"},{"title":"B","description":"b","gear":"y"}],` +
		`"affiliate":{"item":"Charger","reason":"Photos","search_keyword":"power bank"}}`,
	"/v3": `{"title":"Sapporo %d","intro":"Loop.","base_area":"Sapporo","itinerary":[{"day":1,` +
		`"maps_url":"https://maps.example.com/x","events":[{"t":"09:00","n":"Park","q":"Odori","d":"Stroll","type":"spot"}]}],` +
		`"affiliate":{"label":"Rail pass","url":"https://rail.example.com/"}}`,
}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// slugPool collects saved slugs per prefix so that reads hit real records.
type slugPool struct {
	mu    sync.RWMutex
	slugs map[string][]string
}

func (p *slugPool) add(prefix, slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slugs[prefix] = append(p.slugs[prefix], slug)
}

func (p *slugPool) pick(rng *rand.Rand, prefix string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.slugs[prefix]
	if len(s) == 0 {
		return "", false
	}
	return s[rng.Intn(len(s))], true
}

var pool = &slugPool{slugs: map[string][]string{}}

func main() {
	flag.Parse()

	fmt.Println("=== tripgen Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Target: %s\n\n", *numWorkers, *testDuration, *baseURL)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Saving plans (POST /plans) ---")
	runPhase(*testDuration, doSave)

	fmt.Println("\n--- Phase 2: Read-heavy load (10% save, 45% list, 45% get) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doSave(rng)
		case r < 0.55:
			return doList(rng)
		default:
			return doGet(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Generation (POST /generate, 429 expected once limits trip) ---")
	runPhase(*testDuration, doGenerate)
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8s %6d %10s %10s %10s %10s\n",
			ep, humanize.Comma(s.count), s.errors,
			fmtDur(avgDuration(s.latencies)), fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)), fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %s reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		humanize.Comma(totalOps), totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func timed(endpoint string, req func() (*http.Response, error), ok func(status int, body []byte) bool) result {
	start := time.Now()
	resp, err := req()
	if err != nil {
		return result{endpoint, 0, time.Since(start), true}
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	lat := time.Since(start)
	return result{endpoint, resp.StatusCode, lat, !ok(resp.StatusCode, body)}
}

func doSave(rng *rand.Rand) result {
	prefix := prefixes[rng.Intn(len(prefixes))]
	payload := fmt.Sprintf(samples[prefix], rng.Intn(1000))
	return timed("POST "+prefix+"/plans", func() (*http.Response, error) {
		return httpClient.Post(*baseURL+prefix+"/plans", "application/json", strings.NewReader(payload))
	}, func(status int, body []byte) bool {
		if status != http.StatusOK {
			return false
		}
		var resp struct {
			Slug string `json:"slug"`
		}
		if json.Unmarshal(body, &resp) == nil && resp.Slug != "" {
			pool.add(prefix, resp.Slug)
		}
		return true
	})
}

func doList(rng *rand.Rand) result {
	prefix := prefixes[rng.Intn(len(prefixes))]
	url := fmt.Sprintf("%s%s/plans?page=%d", *baseURL, prefix, rng.Intn(3)+1)
	return timed("GET "+prefix+"/plans", func() (*http.Response, error) {
		return httpClient.Get(url)
	}, func(status int, _ []byte) bool { return status == http.StatusOK })
}

func doGet(rng *rand.Rand) result {
	prefix := prefixes[rng.Intn(len(prefixes))]
	slug, ok := pool.pick(rng, prefix)
	if !ok {
		return doList(rng)
	}
	return timed("GET "+prefix+"/plans/{slug}", func() (*http.Response, error) {
		return httpClient.Get(*baseURL + prefix + "/plans/" + slug)
	}, func(status int, _ []byte) bool { return status == http.StatusOK })
}

func doGenerate(rng *rand.Rand) result {
	prefix := prefixes[rng.Intn(len(prefixes))]
	body, _ := json.Marshal(map[string]interface{}{
		"destination": "Kyoto",
		"days":        rng.Intn(3) + 1,
	})
	return timed("POST "+prefix+"/generate", func() (*http.Response, error) {
		req, err := http.NewRequest(http.MethodPost, *baseURL+prefix+"/generate", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", rng.Intn(250)+1))
		return httpClient.Do(req)
	}, func(status int, _ []byte) bool {
		return status == http.StatusOK || status == http.StatusTooManyRequests
	})
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
