package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 对同一对用户并发发起相反方向的好友请求，检查每一轮只有一个成功，并统计延迟

type envelope struct {
	Code    int             `json:"code"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type account struct {
	ID    uint
	Token string
}

type Stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	wins      int
	conflicts int
	failures  int
	badRounds int
}

func (s *Stats) add(latency time.Duration, env *envelope, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, latency)
	switch {
	case err != nil:
		s.failures++
	case env.Code == 0:
		s.wins++
	case env.Kind == "AlreadyExists":
		s.conflicts++
	default:
		s.failures++
	}
}

func (s *Stats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

var client = &http.Client{Timeout: 8 * time.Second}

func call(method, url, token string, body interface{}) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &env, nil
}

func register(base, name string) (*account, error) {
	env, err := call(http.MethodPost, base+"/api/v1/users/register", "", map[string]string{
		"username": name,
		"password": "bench-" + name,
	})
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("register %s: %s", name, env.Message)
	}
	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &account{ID: data.User.ID, Token: data.AccessToken}, nil
}

// race 一轮：每个方向各 perSide 个并发请求
func race(base string, a, b *account, perSide int, stats *Stats) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		round int
	)
	fire := func(from, to *account) {
		defer wg.Done()
		start := time.Now()
		env, err := call(http.MethodPost, base+"/api/v1/friends/request", from.Token, map[string]uint{"friendId": to.ID})
		stats.add(time.Since(start), env, err)
		if err == nil && env.Code == 0 {
			mu.Lock()
			round++
			mu.Unlock()
		}
	}
	for i := 0; i < perSide; i++ {
		wg.Add(2)
		go fire(a, b)
		go fire(b, a)
	}
	wg.Wait()

	if round != 1 {
		stats.mu.Lock()
		stats.badRounds++
		stats.mu.Unlock()
	}

	// 清理，为下一轮做准备
	_, _ = call(http.MethodDelete, base+"/api/v1/friends/remove/"+strconv.FormatUint(uint64(b.ID), 10), a.Token, nil)
}

func argInt(i, def int) int {
	if len(os.Args) > i {
		if v, err := strconv.Atoi(os.Args[i]); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	rounds := argInt(1, 20)
	perSide := argInt(2, 5)
	baseURL := "http://localhost:8080"
	if v := os.Getenv("BENCH_BASE_URL"); v != "" {
		baseURL = v
	}

	fmt.Println("=== 好友请求并发测试 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("目标: %s 轮数: %d 每方向并发: %d\n", baseURL, rounds, perSide)

	suffix := uuid.NewString()[:8]
	a, err := register(baseURL, "bench_a_"+suffix)
	if err != nil {
		fmt.Println("注册失败:", err)
		os.Exit(1)
	}
	b, err := register(baseURL, "bench_b_"+suffix)
	if err != nil {
		fmt.Println("注册失败:", err)
		os.Exit(1)
	}

	stats := &Stats{}
	start := time.Now()
	for i := 0; i < rounds; i++ {
		race(baseURL, a, b, perSide, stats)
	}
	took := time.Since(start)

	sort.Slice(stats.latencies, func(i, j int) bool { return stats.latencies[i] < stats.latencies[j] })

	fmt.Println("\n=== 测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总请求: %d 成功: %d 冲突: %d 失败: %d\n",
		len(stats.latencies), stats.wins, stats.conflicts, stats.failures)
	fmt.Printf("延迟 p50: %v p90: %v p99: %v 最大: %v\n",
		stats.percentile(0.50), stats.percentile(0.90), stats.percentile(0.99), stats.percentile(1))
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(len(stats.latencies))/took.Seconds())
	}
	if stats.badRounds > 0 {
		fmt.Printf("唯一性被破坏的轮数: %d\n", stats.badRounds)
		os.Exit(1)
	}
	fmt.Println("每一轮都只有一个请求成功")
}
