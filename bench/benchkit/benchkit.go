// Package benchkit holds the HTTP client setup and statistics shared by the
// load tools under bench/.
package benchkit

import (
	"crypto/tls"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

// User is a registered account driven by its own cookie-carrying client.
type User struct {
	Name   string
	Client *http.Client
}

// NewClient returns a client with a private cookie jar. Redirects are not
// followed so callers can inspect the 302 the server answers with.
func NewClient(insecure bool) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
}

// PostForm submits form values and discards the body.
func PostForm(client *http.Client, target string, form url.Values) (int, error) {
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// GetJSON fetches target asking for the JSON rendering of the page.
func GetJSON(client *http.Client, target string, out any) error {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register creates an account and logs it in. The returned user's client
// carries the session cookie.
func Register(server, name, password string, insecure bool) (User, error) {
	client := NewClient(insecure)
	form := url.Values{"username": {name}, "password": {password}}

	status, err := PostForm(client, server+"/register", form)
	if err != nil {
		return User{}, fmt.Errorf("register %s: %w", name, err)
	}
	if status != http.StatusFound {
		return User{}, fmt.Errorf("register %s: status %d", name, status)
	}

	status, err = PostForm(client, server+"/login", form)
	if err != nil {
		return User{}, fmt.Errorf("login %s: %w", name, err)
	}
	if status != http.StatusFound {
		return User{}, fmt.Errorf("login %s: status %d", name, status)
	}
	return User{Name: name, Client: client}, nil
}

// TrimmedMean sorts data and averages it after dropping trimPercent from each end.
func TrimmedMean(data []float64, trimPercent float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sort.Float64s(data)
	trim := int(float64(len(data)) * trimPercent / 100.0)
	if trim*2 >= len(data) {
		trim = len(data) / 2
	}
	trimmed := data[trim : len(data)-trim]
	if len(trimmed) == 0 {
		return data[len(data)/2]
	}
	var sum float64
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

// Percentile interpolates the p-th percentile of sorted data.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	k := (p / 100.0) * float64(len(data)-1)
	f := int(k)
	c := f + 1
	if c >= len(data) {
		return data[len(data)-1]
	}
	return data[f]*(float64(c)-k) + data[c]*(k-float64(f))
}

// WriteCSV stores one latency per row.
func WriteCSV(path string, latencies []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"latency_ms"})
	for _, d := range latencies {
		w.Write([]string{fmt.Sprintf("%.3f", d)})
	}
	w.Flush()
	return w.Error()
}
