package main

import (
	"bytes"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/multikey"
	"github.com/hupe1980/multikey/prommetrics"
	"github.com/hupe1980/multikey/testutil"
)

type account struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

func main() {
	seed := int64(4711)
	size := 50000

	reg := prometheus.NewRegistry()

	store, err := multikey.New[string, account](
		[]string{"name", "email", "ssn"},
		multikey.WithIDGenerator(multikey.UUIDGenerator{TimeOrdered: true}),
		multikey.WithMetricsCollector(prommetrics.New(reg)),
		multikey.WithLogger(multikey.NewTextLogger(slog.LevelWarn)),
	)
	if err != nil {
		log.Fatalf("failed to create store: %v", err)
	}

	rng := testutil.NewRNG(seed)

	fmt.Println("--- Add ---")
	fmt.Println("Size:", size)

	start := time.Now()

	for i := range size {
		name := fmt.Sprintf("user-%d", i)
		keys := map[string]string{
			"name":  name,
			"email": name + "@example.com",
		}
		// Roughly half the accounts carry an ssn.
		if rng.Intn(2) == 0 {
			keys["ssn"] = fmt.Sprintf("%09d", i)
		}
		if _, err := store.Add(keys, account{Name: name, Email: keys["email"], Plan: "free"}); err != nil {
			log.Fatalf("add %s: %v", name, err)
		}
	}

	fmt.Printf("Elapsed: %s\n\n", time.Since(start))

	fmt.Println("--- Lookup ---")

	start = time.Now()
	hits := 0

	for range size {
		email := fmt.Sprintf("user-%d@example.com", rng.Intn(2*size))
		if ok, _ := store.HasKey("email", email); ok {
			hits++
		}
	}

	fmt.Println("Hits:", hits)
	fmt.Printf("Elapsed: %s\n\n", time.Since(start))

	fmt.Println("--- Pop ---")

	start = time.Now()
	popped := 0

	for i := 0; i < size; i += 3 {
		if _, err := store.Pop("name", fmt.Sprintf("user-%d", i)); err == nil {
			popped++
		}
	}

	fmt.Println("Popped:", popped)
	fmt.Println("Remaining:", store.Len())
	fmt.Printf("Elapsed: %s\n\n", time.Since(start))

	fmt.Println("--- Snapshot ---")

	var buf bytes.Buffer

	start = time.Now()

	if err := store.Save(&buf, multikey.WithCompression(multikey.CompressionZSTD)); err != nil {
		log.Fatalf("save: %v", err)
	}

	fmt.Println("Bytes:", buf.Len())

	restored, err := multikey.Load[string, account](&buf)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	fmt.Println("Restored:", restored.Len())
	fmt.Printf("Elapsed: %s\n\n", time.Since(start))

	fmt.Println("--- Metrics ---")

	families, err := reg.Gather()
	if err != nil {
		log.Fatalf("gather: %v", err)
	}

	for _, mf := range families {
		fmt.Printf("%s: %d series\n", mf.GetName(), len(mf.GetMetric()))
	}
}
