//go:build integration
// +build integration

package scripts

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ZanzyTHEbar/toolagent/toolagent/db"
	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/ZanzyTHEbar/toolagent/toolagent/memory"
	"github.com/rs/zerolog"
)

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

// RunSmokeLibSQL checks that the embedded libsql driver supports what the
// document store relies on, then round-trips a few chunks through it.
func RunSmokeLibSQL() {
	fmt.Println("Smoke test: LibSQL document store")
	ctx := context.Background()
	tmp := "./smoke.db"
	defer os.Remove(tmp)

	dbconn, err := db.ConnectToDB(ctx, tmp, zerolog.New(os.Stderr))
	must(err, "connect")
	defer dbconn.Close()

	// Basic
	var v int
	err = dbconn.QueryRowContext(ctx, "SELECT 1").Scan(&v)
	must(err, "basic SELECT")
	if v != 1 {
		log.Fatalf("basic SELECT returned %v", v)
	}
	fmt.Println("OK: basic SQL")

	// JSON1
	var jsonRes string
	err = dbconn.QueryRowContext(ctx, "SELECT json_extract('{\"test\":\"value\"}', '$.test')").Scan(&jsonRes)
	must(err, "JSON1 query")
	if jsonRes != "value" {
		log.Fatalf("JSON1 returned unexpected: %v", jsonRes)
	}
	fmt.Println("OK: JSON1")

	// Vector (native, optional)
	var vtype string
	if err := dbconn.QueryRowContext(ctx, "SELECT typeof(vector32('[1,2,3]'))").Scan(&vtype); err != nil {
		log.Printf("WARN: vector32 not available: %v", err)
	} else {
		fmt.Printf("OK: vector32 typeof=%s\n", vtype)
	}

	// Document store round trip
	store := memory.NewStore(dbconn)
	must(store.Upsert(ctx,
		ports.Document{ID: "smoke-0", Source: "smoke.md", Content: "Paris is in France.", Embedding: []float32{1, 0, 0}},
		ports.Document{ID: "smoke-1", Source: "smoke.md", ChunkIndex: 1, Content: "Tokyo is in Japan.", Embedding: []float32{0, 1, 0}},
	), "upsert")

	hits, err := store.Search(ctx, []float32{0.9, 0.1, 0}, 1)
	must(err, "search")
	if len(hits) != 1 || hits[0].ID != "smoke-0" {
		log.Fatalf("search returned unexpected hits: %+v", hits)
	}
	fmt.Printf("OK: search -> %s (%.3f)\n", hits[0].ID, hits[0].Score)

	removed, err := store.DeleteSource(ctx, "smoke.md")
	must(err, "delete source")
	if removed != 2 {
		log.Fatalf("delete source removed %d rows", removed)
	}
	fmt.Println("OK: delete source")

	fmt.Println("Smoke checks completed (required features must pass).")
}
