package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/statkit/outlier/pkg/server"
	"github.com/statkit/outlier/pkg/stat"
)

func init() {
	BenchCmd.Flags().Int("count", 1_000_000, "number of values to generate")
	BenchCmd.Flags().Float64Slice("percentiles", []float64{95, 90}, "percentiles to test")
	BenchCmd.Flags().Bool("with-api", false, "also exercise the HTTP API (start the server first)")
	BenchCmd.Flags().String("api-url", "http://localhost:3000", "API base URL")
	RootCmd.AddCommand(BenchCmd)
}

var benchTitle = color.New(color.FgCyan, color.Bold)

// BenchCmd is a volume test: it times the percentile computation over a large
// generated dataset, and optionally replays the same dataset against a
// running API server to compare results.
var BenchCmd = &cobra.Command{
	Use:          "bench",
	Short:        "volume test the percentile computation",
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := cmd.Flags().GetInt("count")
		if err != nil {
			return err
		}

		percentiles, err := cmd.Flags().GetFloat64Slice("percentiles")
		if err != nil {
			return err
		}

		withAPI, err := cmd.Flags().GetBool("with-api")
		if err != nil {
			return err
		}

		apiURL, err := cmd.Flags().GetString("api-url")
		if err != nil {
			return err
		}

		benchTitle.Printf("Outlier Volume Test - %d Values\n\n", count)

		fmt.Printf("Generating %d values...\n", count)
		genStart := time.Now()
		values := generateValues(count)
		fmt.Printf("Generated %d values in %v\n\n", len(values), time.Since(genStart))

		summary := stat.Describe(values)
		fmt.Println("Dataset Statistics:")
		fmt.Printf("  Count: %d\n", summary.Count)
		fmt.Printf("  Min:   %.4f\n", summary.Min)
		fmt.Printf("  Max:   %.4f\n", summary.Max)
		fmt.Printf("  Mean:  %.4f\n\n", summary.Mean)

		results := make(map[float64]float64, len(percentiles))

		benchTitle.Println("Direct Library Tests")
		for _, p := range percentiles {
			start := time.Now()
			result, err := stat.Percentile(values, p)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			results[p] = result
			fmt.Printf("  P%v = %.4f (%v)\n", p, result, elapsed)
		}
		fmt.Println()

		if !withAPI {
			return nil
		}

		benchTitle.Println("API Tests")
		if err := waitForAPI(apiURL); err != nil {
			return err
		}

		for _, p := range percentiles {
			start := time.Now()
			resp, err := callCalculateAPI(apiURL, values, p)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Printf("  P%v = %.4f (%v, count=%d)\n", p, resp.Result, elapsed, resp.Count)

			if math.Abs(resp.Result-results[p]) > 1e-9 {
				return errors.Errorf("API result %v diverges from library result %v at P%v",
					resp.Result, results[p], p)
			}
		}

		color.New(color.FgGreen).Println("API results match the library")
		return nil
	},
}

// generateValues produces a reproducible uniform dataset in [0, 1000).
func generateValues(count int) []float64 {
	rng := rand.New(rand.NewSource(42))

	bar := pb.StartNew(count)
	defer bar.Finish()

	values := make([]float64, count)
	for i := range values {
		values[i] = rng.Float64() * 1000.0
		bar.Increment()
	}

	return values
}

// waitForAPI polls the health endpoint until the server answers.
func waitForAPI(baseURL string) error {
	ping := func() error {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("unexpected health status %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)
	if err := backoff.Retry(ping, policy); err != nil {
		return errors.Wrapf(err, "API at %s is not reachable", baseURL)
	}
	return nil
}

func callCalculateAPI(baseURL string, values []float64, percentile float64) (*server.CalculateResponse, error) {
	body, err := json.Marshal(server.CalculateRequest{
		Values:     values,
		Percentile: &percentile,
	})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(baseURL+"/calculate", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "calculate request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, errors.Errorf("calculate request failed: %s", apiErr.Error)
		}
		return nil, errors.Errorf("calculate request failed with status %d", resp.StatusCode)
	}

	var result server.CalculateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode calculate response")
	}

	return &result, nil
}
