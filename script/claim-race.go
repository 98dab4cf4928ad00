package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// loginResponse is the subset of POST /api/users the script reads
type loginResponse struct {
	ID    uint64 `json:"id"`
	Token string `json:"token"`
}

// createResponse is the subset of POST /api/envelopes the script reads
type createResponse struct {
	ID     uint64 `json:"id"`
	Answer string `json:"answer"`
}

// envelopeView is the subset of GET /api/envelopes/:id the script reads
type envelopeView struct {
	Status       string   `json:"status"`
	Amount       *float64 `json:"amount"`
	TotalCount   int      `json:"totalCount"`
	ClaimedCount int      `json:"claimedCount"`
	Claims       []struct {
		Amount float64 `json:"amount"`
	} `json:"claims"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// claimResult is the outcome of one claim attempt
type claimResult struct {
	Success      bool
	StatusCode   int
	ErrorCode    int
	ResponseTime time.Duration
	Err          error
}

// raceStats aggregates claim attempts
type raceStats struct {
	Attempts      int
	Successes     int
	ResponseTimes []time.Duration
	StatusCounts  map[int]int
	ErrorCodes    map[int]int
	TotalTime     time.Duration
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) post(path, token string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *client) get(path string, out any) (int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (c *client) login(nickname string) (loginResponse, error) {
	var resp loginResponse
	status, err := c.post("/api/users", "", map[string]string{"nickname": nickname, "password": "race"}, &resp)
	if err == nil && status != http.StatusOK {
		err = fmt.Errorf("login %s: HTTP %d", nickname, status)
	}
	return resp, err
}

func main() {
	// Define command line flags
	racers := flag.Int("n", 50, "Number of users racing to claim")
	shares := flag.Int("shares", 10, "Number of shares in the envelope")
	amount := flag.String("amount", "10.00", "Envelope total in yuan")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	wrongRatio := flag.Int("wrong", 0, "Percent of racers that submit a wrong answer")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	run := uuid.NewString()[:8]

	fmt.Printf("Racing %d users for %d shares of %s (run %s)\n", *racers, *shares, *amount, run)

	sender, err := c.login("sender-" + run)
	if err != nil {
		fail(err)
	}

	var created createResponse
	status, err := c.post("/api/envelopes", sender.Token, map[string]any{
		"senderId": sender.ID,
		"amount":   *amount,
		"count":    *shares,
	}, &created)
	if err != nil || status != http.StatusOK {
		fail(fmt.Errorf("create envelope: HTTP %d: %v", status, err))
	}
	fmt.Printf("Envelope %d created, answer %s\n", created.ID, created.Answer)

	// Log everybody in before the race starts
	users := make([]loginResponse, *racers)
	for i := range users {
		if users[i], err = c.login(fmt.Sprintf("racer-%s-%d", run, i)); err != nil {
			fail(err)
		}
	}

	results := make(chan claimResult, *racers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, u := range users {
		answer := created.Answer
		if *wrongRatio > 0 && i*100/len(users) < *wrongRatio {
			answer = "不对"
		}
		wg.Add(1)
		go func(u loginResponse, answer string) {
			defer wg.Done()
			<-start
			results <- claim(c, created.ID, u, answer)
		}(u, answer)
	}

	stats := &raceStats{StatusCounts: map[int]int{}, ErrorCodes: map[int]int{}}
	begin := time.Now()
	close(start)
	wg.Wait()
	close(results)
	stats.TotalTime = time.Since(begin)

	for r := range results {
		stats.Attempts++
		stats.ResponseTimes = append(stats.ResponseTimes, r.ResponseTime)
		stats.StatusCounts[r.StatusCode]++
		if r.Success {
			stats.Successes++
		} else if r.ErrorCode != 0 {
			stats.ErrorCodes[r.ErrorCode]++
		}
	}

	var view envelopeView
	if _, err := c.get(fmt.Sprintf("/api/envelopes/%d", created.ID), &view); err != nil {
		fail(err)
	}

	printResults(stats, view, *shares)
}

func claim(c *client, envelopeID uint64, u loginResponse, answer string) claimResult {
	var body json.RawMessage
	begin := time.Now()
	status, err := c.post(fmt.Sprintf("/api/envelopes/%d/claim", envelopeID), u.Token, map[string]any{
		"userId": u.ID,
		"answer": answer,
	}, &body)
	result := claimResult{StatusCode: status, ResponseTime: time.Since(begin), Err: err}
	if err != nil {
		return result
	}
	result.Success = status == http.StatusOK
	if !result.Success {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil {
			result.ErrorCode = e.Code
		}
	}
	return result
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)*p/100]
}

func printResults(stats *raceStats, view envelopeView, shares int) {
	sorted := append([]time.Duration(nil), stats.ResponseTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	fmt.Println("\n================= RACE RESULTS =================")
	fmt.Printf("Attempts:            %d\n", stats.Attempts)
	fmt.Printf("Successful claims:   %d\n", stats.Successes)
	fmt.Printf("Total time:          %.2f seconds\n", stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("P50 Response:        %v\n", percentile(sorted, 50))
	fmt.Printf("P90 Response:        %v\n", percentile(sorted, 90))
	fmt.Printf("P99 Response:        %v\n", percentile(sorted, 99))

	fmt.Println("\n----------------- STATUS CODES -----------------")
	for status, count := range stats.StatusCounts {
		fmt.Printf("HTTP %d: %d\n", status, count)
	}
	for code, count := range stats.ErrorCodes {
		fmt.Printf("error code %d: %d\n", code, count)
	}

	var claimed float64
	for _, cl := range view.Claims {
		claimed += cl.Amount
	}

	fmt.Println("\n================= INVARIANTS =================")
	ok := true
	if stats.Successes > shares {
		fmt.Printf("❌ %d successful claims for %d shares\n", stats.Successes, shares)
		ok = false
	}
	if view.ClaimedCount != stats.Successes || len(view.Claims) != stats.Successes {
		fmt.Printf("❌ envelope reports %d claims, race saw %d\n", view.ClaimedCount, stats.Successes)
		ok = false
	}
	if view.Status == "claimed" && view.Amount != nil && fmt.Sprintf("%.2f", claimed) != fmt.Sprintf("%.2f", *view.Amount) {
		fmt.Printf("❌ claims sum to %.2f, envelope holds %.2f\n", claimed, *view.Amount)
		ok = false
	}
	if ok {
		fmt.Printf("✅ %d/%d shares claimed, status %s, claims total %.2f\n", view.ClaimedCount, view.TotalCount, view.Status, claimed)
	}
	fmt.Println("================================================")
	if !ok {
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
