package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/time/rate"

	"github.com/kkkkikiki/dealswipe/internal/feed"
	"github.com/kkkkikiki/dealswipe/internal/service"
)

// SimConfig drives a swipe simulation against a running server
type SimConfig struct {
	BaseURL  string        `env:"BASE_URL,default=http://localhost:8080"`
	Users    int           `env:"USERS,default=20"`
	RPS      int           `env:"RPS,default=100"`
	Duration time.Duration `env:"DURATION,default=30s"`
	Timeout  time.Duration `env:"TIMEOUT,default=10s"`
}

// SimResult gathers aggregated metrics for the run. Latencies are in
// nanoseconds.
type SimResult struct {
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	SavedNotices  int64
	LatencySum    int64
	P95Latency    int64
}

type clients struct {
	startSession *connect.Client[service.StartSessionRequest, service.StartSessionResponse]
	loadFeed     *connect.Client[service.LoadFeedRequest, service.LoadFeedResponse]
	gesture      *connect.Client[service.GestureRequest, service.GestureResponse]
	listSaved    *connect.Client[service.ListSavedRequest, service.ListSavedResponse]
	endSession   *connect.Client[service.EndSessionRequest, service.EndSessionResponse]
}

func newClients(httpClient *http.Client, baseURL string) *clients {
	return &clients{
		startSession: service.NewClient[service.StartSessionRequest, service.StartSessionResponse](httpClient, baseURL, service.TelemetryServiceStartSession),
		loadFeed:     service.NewClient[service.LoadFeedRequest, service.LoadFeedResponse](httpClient, baseURL, service.FeedServiceLoadFeed),
		gesture:      service.NewClient[service.GestureRequest, service.GestureResponse](httpClient, baseURL, service.FeedServiceGesture),
		listSaved:    service.NewClient[service.ListSavedRequest, service.ListSavedResponse](httpClient, baseURL, service.FeedServiceListSaved),
		endSession:   service.NewClient[service.EndSessionRequest, service.EndSessionResponse](httpClient, baseURL, service.TelemetryServiceEndSession),
	}
}

type user struct {
	id        string
	sessionID string
}

func main() {
	var cfg SimConfig
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper("SIM_", envconfig.OsLookuper()),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Users < 1 || cfg.RPS < 1 {
		fmt.Fprintln(os.Stderr, "SIM_USERS and SIM_RPS must be positive")
		os.Exit(1)
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Users * 4,
		MaxIdleConnsPerHost: cfg.Users * 4,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.Timeout}
	c := newClients(httpClient, cfg.BaseURL)

	users, err := setup(c, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up users: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("==========================================")
	fmt.Println("Swipe simulation")
	fmt.Println("==========================================")
	fmt.Printf("Target   : %s\n", cfg.BaseURL)
	fmt.Printf("Users    : %d\n", len(users))
	fmt.Printf("RPS      : %d\n", cfg.RPS)
	fmt.Printf("Duration : %v\n", cfg.Duration)
	fmt.Println("==========================================")

	burst := cfg.RPS / cfg.Users
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), burst)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var result SimResult
	var wg sync.WaitGroup
	latencyChan := make(chan time.Duration, 4096)
	done := make(chan struct{})
	go func() {
		trackP95(latencyChan, &result)
		close(done)
	}()

	// one worker per user keeps each feed single-writer
	for _, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				swipe(c, cfg.Timeout, u, &result, latencyChan)
			}
		}()
	}

	start := time.Now()
	<-ctx.Done()
	wg.Wait()
	close(latencyChan)
	<-done
	totalDur := time.Since(start)

	fmt.Println("==========================================")
	fmt.Println("Results")
	fmt.Println("==========================================")
	fmt.Printf("Elapsed        : %.2fs\n", totalDur.Seconds())
	fmt.Printf("Requests       : %d\n", result.TotalRequests)
	fmt.Printf("Succeeded      : %d\n", result.SuccessCount)
	fmt.Printf("Failed         : %d\n", result.ErrorCount)

	var avgLatency time.Duration
	if result.SuccessCount > 0 {
		avgLatency = time.Duration(result.LatencySum / result.SuccessCount)
	}
	fmt.Printf("Actual RPS     : %.2f\n", float64(result.SuccessCount)/totalDur.Seconds())
	fmt.Printf("Avg latency    : %v\n", avgLatency)
	fmt.Printf("P95 latency    : %v\n", time.Duration(result.P95Latency))
	fmt.Println("==========================================")

	// saved-deal writes are asynchronous on the server
	time.Sleep(time.Second)
	if err := verifySaved(c, cfg.Timeout, users, result.SavedNotices); err != nil {
		fmt.Printf("Saved deal check failed: %v\n", err)
	} else {
		fmt.Println("Saved deal check passed")
	}

	if err := endSessions(c, cfg.Timeout, users); err != nil {
		fmt.Printf("Ending sessions failed: %v\n", err)
	}
}

// setup starts a session and loads a feed for every simulated user
func setup(c *clients, cfg SimConfig) ([]user, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := make([]user, 0, cfg.Users)
	for i := 0; i < cfg.Users; i++ {
		u := user{id: fmt.Sprintf("sim-%d-%d", time.Now().Unix(), i)}

		req := connect.NewRequest(&service.StartSessionRequest{UserID: u.id, Timezone: "Europe/Berlin"})
		req.Header().Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) Mobile/15E148 Safari/604.1")
		session, err := c.startSession.CallUnary(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("start session failed: %w", err)
		}
		u.sessionID = session.Msg.SessionID

		loaded, err := c.loadFeed.CallUnary(ctx, connect.NewRequest(&service.LoadFeedRequest{UserID: u.id, SessionID: u.sessionID}))
		if err != nil {
			return nil, fmt.Errorf("load feed failed: %w", err)
		}
		if len(loaded.Msg.Deals) == 0 {
			return nil, fmt.Errorf("feed for %s is empty", u.id)
		}
		users = append(users, u)
	}
	return users, nil
}

// swipe performs one random gesture. A left swipe is always confirmed in
// the same step so the feed never stays blocked.
func swipe(c *clients, timeout time.Duration, u user, result *SimResult, latencyChan chan<- time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var commands []string
	switch n := rand.IntN(10); {
	case n < 4:
		commands = []string{"accept"}
	case n < 7:
		commands = []string{"reject", "confirm_dismiss"}
	default:
		commands = []string{"next"}
	}

	for _, cmd := range commands {
		req := connect.NewRequest(&service.GestureRequest{UserID: u.id, SessionID: u.sessionID, Command: cmd})

		start := time.Now()
		atomic.AddInt64(&result.TotalRequests, 1)
		res, err := c.gesture.CallUnary(ctx, req)
		latency := time.Since(start)
		if err != nil {
			atomic.AddInt64(&result.ErrorCount, 1)
			return
		}

		atomic.AddInt64(&result.SuccessCount, 1)
		atomic.AddInt64(&result.LatencySum, latency.Nanoseconds())
		for _, n := range res.Msg.Notices {
			if n.Kind == feed.NoticeSaved {
				atomic.AddInt64(&result.SavedNotices, 1)
			}
		}
		select {
		case latencyChan <- latency:
		default:
		}
	}
}

// trackP95 keeps a bounded sample of latencies and publishes its P95
func trackP95(latencies <-chan time.Duration, result *SimResult) {
	const size = 1000
	buf := make([]int64, 0, size)

	for lat := range latencies {
		if len(buf) < size {
			buf = append(buf, lat.Nanoseconds())
		} else {
			buf[rand.IntN(size)] = lat.Nanoseconds()
		}

		if len(buf) >= 100 && len(buf)%100 == 0 {
			sorted := append([]int64(nil), buf...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			idx := int(float64(len(sorted)) * 0.95)
			if idx >= len(sorted) {
				idx = len(sorted) - 1
			}
			atomic.StoreInt64(&result.P95Latency, sorted[idx])
		}
	}
}

// verifySaved checks that every saved notice was persisted. Each deal can
// only be saved once per user, so the counts must match.
func verifySaved(c *clients, timeout time.Duration, users []user, expected int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var persisted int64
	for _, u := range users {
		res, err := c.listSaved.CallUnary(ctx, connect.NewRequest(&service.ListSavedRequest{UserID: u.id}))
		if err != nil {
			return fmt.Errorf("failed to list saved deals of %s: %w", u.id, err)
		}
		persisted += int64(len(res.Msg.Saved))
	}
	if persisted != expected {
		return fmt.Errorf("expected %d saved deals, found %d", expected, persisted)
	}
	return nil
}

// endSessions closes every simulated session so the server releases its feeds
func endSessions(c *clients, timeout time.Duration, users []user) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, u := range users {
		req := connect.NewRequest(&service.EndSessionRequest{SessionID: u.sessionID, UserID: u.id})
		if _, err := c.endSession.CallUnary(ctx, req); err != nil {
			return fmt.Errorf("failed to end session %s: %w", u.sessionID, err)
		}
	}
	return nil
}
