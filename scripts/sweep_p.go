// sweep_p.go runs the playground API across a range of p values and prints the
// top of each ranking, to see how sensitive the order is to p.
//
// Usage:
//
//	go run scripts/sweep_p.go -api http://localhost:8700 -from 0.05 -to 0.5 -step 0.05
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type sweepRequest struct {
	P                     float64   `json:"p"`
	BMode                 int       `json:"b_mode"`
	AdjacencyMode         int       `json:"adjacency_mode"`
	BWinsPower            float64   `json:"b_wins_power"`
	AdjacencyWinPoints    float64   `json:"adjacency_win_points"`
	AdjacencyTiePoints    float64   `json:"adjacency_tie_points"`
	AdjacencyMarginPower  float64   `json:"adjacency_margin_power"`
	AdjacencyMarginTiers  []float64 `json:"adjacency_margin_tiers"`
	AdjacencyMarginValues []float64 `json:"adjacency_margin_values"`
}

type sweepResponse struct {
	Teams  []string  `json:"teams"`
	Scores []float64 `json:"scores"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "playground base URL")
	token := flag.String("token", "", "API bearer token")
	from := flag.Float64("from", 0.05, "first p value")
	to := flag.Float64("to", 0.5, "last p value")
	step := flag.Float64("step", 0.05, "p increment")
	top := flag.Int("top", 5, "teams to print per run")
	adjMode := flag.Int("adjacency-mode", 0, "adjacency matrix mode (0 win-loss, 1 margin, 2 tiers)")
	bMode := flag.Int("b-mode", 0, "B matrix mode (0 uniform, 1 scaled by wins)")
	flag.Parse()

	if *step <= 0 {
		log.Fatal("step must be positive")
	}

	client := &http.Client{}
	runs, failed := 0, 0
	for p := *from; p <= *to+1e-9; p += *step {
		body, _ := json.Marshal(sweepRequest{
			P:                     p,
			BMode:                 *bMode,
			AdjacencyMode:         *adjMode,
			BWinsPower:            1,
			AdjacencyWinPoints:    1,
			AdjacencyTiePoints:    0.5,
			AdjacencyMarginPower:  1,
			AdjacencyMarginTiers:  []float64{},
			AdjacencyMarginValues: []float64{0, 0},
		})
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/power_rankings", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("p=%.3f: %v", p, err)
			failed++
			continue
		}
		var out sweepResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			log.Printf("p=%.3f: status %d", p, resp.StatusCode)
			failed++
			continue
		}

		runs++
		n := min(*top, len(out.Teams))
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = fmt.Sprintf("%s (%.4f)", out.Teams[i], out.Scores[i])
		}
		fmt.Printf("p=%.3f  %s\n", p, strings.Join(names, ", "))
	}

	log.Printf("done: %d runs, %d failed", runs, failed)
}
