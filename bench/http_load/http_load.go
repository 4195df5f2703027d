package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"example.com/socialfeed/bench/benchkit"
)

func main() {
	// --- Command-line flags ---
	var server string
	var duration int
	var concurrency int
	var csvFile string
	var trimPercent float64
	var insecure bool

	flag.StringVar(&server, "server", "http://localhost:8080", "server base URL")
	flag.IntVar(&duration, "duration", 30, "duration in seconds")
	flag.IntVar(&concurrency, "c", 50, "number of concurrent goroutines / users")
	flag.StringVar(&csvFile, "csv", "latencies.csv", "CSV file to save latencies")
	flag.Float64Var(&trimPercent, "trim", 1.0, "percent of latency to trim from top and bottom for trimmed mean")
	flag.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	flag.Parse()

	// --- Register and log in one user per goroutine ---
	fmt.Printf("Creating %d users...\n", concurrency)
	users := make([]benchkit.User, concurrency)
	for i := 0; i < concurrency; i++ {
		name := fmt.Sprintf("load-user-%d-%d", i, time.Now().UnixNano())
		u, err := benchkit.Register(server, name, "load-pass", insecure)
		if err != nil {
			panic(fmt.Sprintf("failed to create user: %v", err))
		}
		users[i] = u
	}
	fmt.Println("Users created.")

	stopTime := time.Now().Add(time.Duration(duration) * time.Second)
	var wg sync.WaitGroup

	var requests int64
	var successes int64
	var errors4xx int64
	var errors5xx int64

	latencySlices := make([][]float64, concurrency)

	// --- Each goroutine posts until the deadline ---
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			user := users[idx]
			var localLatencies []float64

			for time.Now().Before(stopTime) {
				form := url.Values{
					"title":   {fmt.Sprintf("load %d", idx)},
					"content": {fmt.Sprintf("load test post %d", time.Now().UnixNano())},
				}

				start := time.Now()
				status, err := benchkit.PostForm(user.Client, server+"/create", form)
				lat := time.Since(start).Seconds() * 1000
				localLatencies = append(localLatencies, lat)
				atomic.AddInt64(&requests, 1)

				if err != nil {
					fmt.Printf("Request error: %v\n", err)
					continue
				}

				// A created post answers with a redirect to the feed.
				switch {
				case status == http.StatusFound:
					atomic.AddInt64(&successes, 1)
				case status >= 400 && status < 500:
					atomic.AddInt64(&errors4xx, 1)
				case status >= 500:
					atomic.AddInt64(&errors5xx, 1)
				}
			}

			latencySlices[idx] = localLatencies
		}(i)
	}

	wg.Wait()

	var allLatencies []float64
	for _, slice := range latencySlices {
		allLatencies = append(allLatencies, slice...)
	}
	sort.Float64s(allLatencies)

	p50 := benchkit.Percentile(allLatencies, 50)
	p90 := benchkit.Percentile(allLatencies, 90)
	p99 := benchkit.Percentile(allLatencies, 99)
	mean := benchkit.TrimmedMean(allLatencies, trimPercent)

	fmt.Printf("Requests: %d  Successes: %d  4xx: %d  5xx: %d\n", requests, successes, errors4xx, errors5xx)
	fmt.Printf("Latency (ms): trimmed_mean=%.2f p50=%.2f p90=%.2f p99=%.2f\n", mean, p50, p90, p99)

	if err := benchkit.WriteCSV(csvFile, allLatencies); err != nil {
		fmt.Printf("Failed to write CSV file: %v\n", err)
		return
	}
	fmt.Printf("Saved latencies to %s\n", csvFile)
}
