package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"example.com/socialfeed/bench/benchkit"
)

// notificationsPage is the JSON rendering of /notifications.
type notificationsPage struct {
	Notifications []struct {
		Sender    string `json:"sender"`
		Message   string `json:"message"`
		WasUnread bool   `json:"was_unread"`
	} `json:"notifications"`
}

type followingPage struct {
	Following []struct {
		Username string `json:"username"`
	} `json:"following"`
}

func main() {
	var serverAddr string
	var U, F, concurrency int
	var insecure bool

	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "server base URL")
	flag.IntVar(&U, "users", 50, "number of users to create")
	flag.IntVar(&F, "follows", 10, "follow attempts per user")
	flag.IntVar(&concurrency, "c", 20, "concurrency for follow requests")
	flag.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	flag.Parse()

	// --- 1) Create users ---
	fmt.Printf("Creating %d users...\n", U)
	users := make([]benchkit.User, 0, U)
	for i := 0; i < U; i++ {
		name := fmt.Sprintf("user-%d-%d", i, time.Now().UnixNano())
		u, err := benchkit.Register(serverAddr, name, "bench-pass", insecure)
		if err != nil {
			fmt.Printf("create user error: %v\n", err)
			os.Exit(1)
		}
		users = append(users, u)
	}
	fmt.Println("Users created successfully.")

	// --- 2) Follow random users concurrently, repeats included ---
	fmt.Printf("Sending %d follow requests per user with concurrency %d...\n", F, concurrency)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		latencies []float64
		failures  int
	)
	// expected[followed][follower] records every distinct edge attempted.
	expected := make(map[string]map[string]bool, len(users))
	sem := make(chan struct{}, concurrency)

	for _, u := range users {
		for j := 0; j < F; j++ {
			target := users[rand.Intn(len(users))]
			if target.Name == u.Name {
				continue
			}

			mu.Lock()
			if expected[target.Name] == nil {
				expected[target.Name] = map[string]bool{}
			}
			expected[target.Name][u.Name] = true
			mu.Unlock()

			wg.Add(1)
			sem <- struct{}{}
			go func(follower, target benchkit.User) {
				defer wg.Done()
				defer func() { <-sem }()

				start := time.Now()
				req, _ := http.NewRequest(http.MethodGet, serverAddr+"/follow/"+target.Name, nil)
				resp, err := follower.Client.Do(req)
				lat := time.Since(start).Seconds() * 1000

				mu.Lock()
				defer mu.Unlock()
				latencies = append(latencies, lat)
				if err != nil {
					failures++
					return
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusFound {
					failures++
				}
			}(u, target)
		}
	}
	wg.Wait()
	fmt.Printf("Follow requests done, %d failed.\n", failures)

	// --- 3) Every distinct edge must yield exactly one notification ---
	fmt.Println("Checking notifications and following lists...")
	var mismatches int
	for _, u := range users {
		var page notificationsPage
		if err := benchkit.GetJSON(u.Client, serverAddr+"/notifications", &page); err != nil {
			fmt.Printf("notifications error for %s: %v\n", u.Name, err)
			mismatches++
			continue
		}

		senders := map[string]int{}
		for _, n := range page.Notifications {
			senders[n.Sender]++
		}
		for follower := range expected[u.Name] {
			if senders[follower] != 1 {
				fmt.Printf("%s: expected 1 notification from %s, got %d\n", u.Name, follower, senders[follower])
				mismatches++
			}
		}
		if len(page.Notifications) != len(expected[u.Name]) {
			fmt.Printf("%s: expected %d notifications, got %d\n", u.Name, len(expected[u.Name]), len(page.Notifications))
			mismatches++
		}
	}

	var sample followingPage
	if err := benchkit.GetJSON(users[0].Client, serverAddr+"/following", &sample); err != nil {
		fmt.Printf("following error: %v\n", err)
	} else {
		fmt.Printf("%s follows %d users\n", users[0].Name, len(sample.Following))
	}

	// --- 4) Latency statistics ---
	if len(latencies) == 0 {
		fmt.Println("No follow requests recorded.")
	} else {
		sort.Float64s(latencies)
		fmt.Printf("Follow latency (ms): count=%d mean=%.2f p50=%.2f p90=%.2f p99=%.2f\n",
			len(latencies),
			benchkit.TrimmedMean(latencies, 1.0),
			benchkit.Percentile(latencies, 50),
			benchkit.Percentile(latencies, 90),
			benchkit.Percentile(latencies, 99))

		if err := benchkit.WriteCSV("e2e_latencies.csv", latencies); err != nil {
			fmt.Printf("Failed to write CSV: %v\n", err)
		} else {
			fmt.Println("Saved e2e_latencies.csv")
		}
	}

	fmt.Printf("Notification mismatches: %d\n", mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}
