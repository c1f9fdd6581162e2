// README: Bench cases: environment, schema, storefront HTTP API, concurrency and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"storefront/internal/infra"
	"storefront/internal/types"
)

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusPending = "PENDING"
	StatusSkip    = "SKIP"
)

var schemaTables = []string{"products", "city_pricing", "tenure_pricing", "add_ons"}

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	product := base + "/api/products/" + r.cfg.ProductID
	// one session per run so repeated runs do not see each other's carts
	session := "bench-" + string(types.NewID())
	selectionURL := base + "/api/sessions/" + session + "/selections/" + r.cfg.ProductID
	quote := map[string]any{"city": r.cfg.City, "tenure_months": r.cfg.TenureMonths}

	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "DB",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "Redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusFail, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "DB",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				if err := infra.Migrate(ctx, r.db); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "DB",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				for _, t := range schemaTables {
					var exists bool
					err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+t).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table " + t}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		httpCaseMethod("HTTP: health", http.MethodGet, base+"/health", nil, []int{200}, nil),
		httpCaseMethod("HTTP: list products", http.MethodGet, base+"/api/products?limit=5", nil, []int{200}, nil),
		httpCaseMethod("HTTP: product options", http.MethodGet, product+"/options", nil, []int{200}, []int{404}),
		httpCase("HTTP: quote", product+"/quote", quote, []int{200}, []int{404}),
		{
			Name:  "HTTP: quote is available",
			Focus: "Pricing",
			Run: func(ctx context.Context, r *Runner) Result {
				var q struct {
					Available bool   `json:"available"`
					Reason    string `json:"reason"`
					Breakdown *struct {
						Total             types.Money `json:"total"`
						FirstMonthPayment types.Money `json:"first_month_payment"`
					} `json:"breakdown"`
				}
				status, latency, err := r.doJSON(ctx, http.MethodPost, product+"/quote", quote, &q)
				switch {
				case err != nil:
					return Result{Status: StatusFail, Note: err.Error()}
				case status == http.StatusNotFound:
					return Result{Status: StatusPending, Note: "product not seeded"}
				case status != http.StatusOK:
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				case !q.Available:
					return Result{Status: StatusFail, Latency: latency, Note: "unavailable: " + q.Reason}
				case q.Breakdown.FirstMonthPayment.Amount >= q.Breakdown.Total.Amount && r.cfg.TenureMonths > 1:
					return Result{Status: StatusFail, Latency: latency, Note: "first month payment not below total"}
				}
				return Result{Status: StatusPass, Latency: latency, Note: "total=" + q.Breakdown.Total.String()}
			},
		},
		httpCase("HTTP: quote unknown add-on", product+"/quote", map[string]any{
			"city": r.cfg.City, "tenure_months": r.cfg.TenureMonths, "add_on_ids": []string{"bench-missing-addon"},
		}, []int{400}, []int{404}),
		httpCaseMethod("HTTP: selection set", http.MethodPut, selectionURL, quote, []int{200}, []int{404}),
		httpCaseMethod("HTTP: selection quote", http.MethodGet, selectionURL+"/quote", nil, []int{200}, []int{404}),
		httpCase("HTTP: cart add from selection", base+"/api/sessions/"+session+"/cart/lines", map[string]any{
			"product_id": r.cfg.ProductID, "from_selection": true,
		}, []int{201}, []int{404}),
		httpCaseMethod("HTTP: cart summary", http.MethodGet, base+"/api/sessions/"+session+"/cart/summary", nil, []int{200}, nil),
		httpCaseMethod("HTTP: cart clear", http.MethodDelete, base+"/api/sessions/"+session+"/cart", nil, []int{204}, nil),
		httpCase("HTTP: admin requires token", base+"/api/admin/products", map[string]any{"name": "x"}, []int{401}, nil),
		{
			Name:  "Concurrency: selection last write wins",
			Focus: "Redis",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentSelection(ctx, r, selectionURL)
			},
		},
		{
			Name:  "Perf: quote load",
			Focus: "Perf",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, product+"/quote", quote)
			},
		},
	}
}

func (r *Runner) doJSON(ctx context.Context, method, url string, body, out any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, fmt.Errorf("decode: %w", err)
		}
		return resp.StatusCode, latency, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, err := r.doJSON(ctx, method, url, body, nil)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			note := fmt.Sprintf("status=%d", status)
			if contains(okStatuses, status) {
				return Result{Status: StatusPass, Latency: latency, Note: note}
			}
			if contains(pendingStatuses, status) {
				return Result{Status: StatusPending, Latency: latency, Note: note}
			}
			return Result{Status: StatusFail, Latency: latency, Note: note}
		},
	}
}

// concurrentSelection fires competing tenure writes; every write should
// succeed and the stored tenure must be one of the values written.
func concurrentSelection(ctx context.Context, r *Runner, url string) Result {
	var opts struct {
		Cities []struct {
			City    string `json:"city"`
			Tenures []struct {
				Months int `json:"months"`
			} `json:"tenures"`
		} `json:"cities"`
	}
	status, _, err := r.doJSON(ctx, http.MethodGet, r.cfg.BaseURL+"/api/products/"+r.cfg.ProductID+"/options", nil, &opts)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: StatusPending, Note: fmt.Sprintf("options status=%d", status)}
	}
	var months []int
	for _, c := range opts.Cities {
		if c.City == r.cfg.City {
			for _, t := range c.Tenures {
				months = append(months, t.Months)
			}
		}
	}
	if len(months) == 0 {
		return Result{Status: StatusPending, Note: "city not offered"}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		fail int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := map[string]any{"city": r.cfg.City, "tenure_months": months[i%len(months)]}
			status, _, err := r.doJSON(ctx, http.MethodPut, url, body, nil)
			if err != nil || status != http.StatusOK {
				mu.Lock()
				fail++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if fail > 0 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("failed writes=%d", fail)}
	}

	var sel struct {
		TenureMonths int `json:"tenure_months"`
	}
	if _, _, err := r.doJSON(ctx, http.MethodGet, url, nil, &sel); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if !contains(months, sel.TenureMonths) {
		return Result{Status: StatusFail, Note: fmt.Sprintf("stored tenure %d was never written", sel.TenureMonths)}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("writes=%d final=%d", r.cfg.Concurrency, sel.TenureMonths)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		count, errCount int64
		maxLatency      time.Duration
		mu              sync.Mutex
		wg              sync.WaitGroup
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, latency, err := r.doJSON(ctx, http.MethodPost, url, payload, nil)
				mu.Lock()
				if err != nil || status >= 500 {
					errCount++
				} else {
					count++
					if latency > maxLatency {
						maxLatency = latency
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Latency: maxLatency, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
