package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"dealflow/test/actors"
	"dealflow/test/chaos"
	"dealflow/test/infra"
	"dealflow/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 90*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 8, "number of concurrent actors")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

func seedRNG(seed int64) { rand.Seed(seed) }

func TestLifecycleConcurrency(t *testing.T) {
	flag.Parse()
	seed := *flSeed
	seedRNG(seed)

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)
	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	switch {
	case *flDSN != "":
		dsn = *flDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv("STRESS_TEST_PG_DSN") != "":
		dsn = os.Getenv("STRESS_TEST_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	default:
		if dockerAvailable(ctx) {
			pgC, dsn, err = infra.StartPostgres16(ctx, "")
			if err != nil {
				t.Fatalf("start postgres: %v", err)
			}
		} else {
			dsn, err = infra.InitLocalDatabase(ctx)
			if err != nil {
				t.Fatalf("init local database: %v", err)
			}
			pgC = &infra.PGContainer{}
		}
	}
	defer pgC.Terminate(context.Background())

	// migrations
	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()
	defer func() {
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	}()

	// seed minimal data
	seedData := mustSeed(t, ctx, pool)

	// run actors
	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	// movers battling over the same transactions; the conditioned stage write
	// decides who wins each step
	for i := 0; i < *flConcurrency; i++ {
		for _, txnID := range seedData.transactionIDs {
			id := txnID
			actorID := uuid.NewString()
			g.Go(func() error { return actors.StageMover(ctx2, pool, id, actorID, stop) })
		}
	}

	// negotiation rounds on one offer
	g.Go(func() error { return actors.RoundWriter(ctx2, pool, seedData.offerID, stop) })
	// match rescoring
	g.Go(func() error { return actors.Rescorer(ctx2, pool, seedData.matchID, stop) })
	// checklist item churn
	g.Go(func() error { return actors.ItemTicker(ctx2, pool, seedData.itemIDs, stop) })
	// chaos: kill random backend
	go chaos.TerminateRandomBackend(ctx2, pool, "", stop)

	// schedule oracle checks until duration reached
	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			name, row, err := oracles.Run(ctx2, pool)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					break loop
				}
				t.Fatalf("oracle error: %v", err)
			}
			if name != "" {
				failed = true
				dumpRecent(t, ctx2, pool)
				t.Fatalf("Oracle %s failed. First row: %s (seed=%d)", name, row, seed)
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v", err)
		}
	}
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

type seedIDs struct {
	transactionIDs []string
	offerID        string
	matchID        string
	checklistID    string
	itemIDs        []string
}

func mustSeed(t *testing.T, ctx context.Context, pool *pgxpool.Pool) seedIDs {
	t.Helper()
	var s seedIDs

	// one transaction per pipeline kind, each at its initial stage
	for _, seedTxn := range []struct {
		kind  string
		stage string
	}{
		{"buyer", "new-enquiry"},
		{"seller", "appraisal"},
		{"buyers_agent", "brief-created"},
	} {
		var id string
		if err := pool.QueryRow(ctx, `INSERT INTO transactions (pipeline_kind, current_stage, contact_id)
                                       VALUES ($1, $2, gen_random_uuid()) RETURNING id`, seedTxn.kind, seedTxn.stage).Scan(&id); err != nil {
			t.Fatalf("seed %s transaction: %v", seedTxn.kind, err)
		}
		s.transactionIDs = append(s.transactionIDs, id)
	}

	// a private-treaty offer to absorb negotiation rounds
	if err := pool.QueryRow(ctx, `INSERT INTO offers (transaction_id, property_id, client_id, sale_method, status)
                                   VALUES ($1, gen_random_uuid(), gen_random_uuid(), 'private_treaty', 'submitted') RETURNING id`,
		s.transactionIDs[0]).Scan(&s.offerID); err != nil {
		t.Fatalf("seed offer: %v", err)
	}

	// a scored match for the rescorer to rewrite
	s.matchID = uuid.NewString()
	if _, err := pool.Exec(ctx, `INSERT INTO property_matches
            (id, property_id, brief_id, overall_score, price_score, location_score, size_score, feature_score)
         VALUES ($1, gen_random_uuid(), gen_random_uuid(), 75, 80, 90, 70, 60)`, s.matchID); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	// a checklist with a mix of blocking and non-blocking items
	if err := pool.QueryRow(ctx, `INSERT INTO dd_checklists (transaction_id, jurisdiction, property_type)
                                   VALUES ($1, 'NSW', 'house') RETURNING id`, s.transactionIDs[0]).Scan(&s.checklistID); err != nil {
		t.Fatalf("seed checklist: %v", err)
	}
	items := []struct {
		category string
		role     string
		blocking bool
	}{
		{"legal", "solicitor", true},
		{"physical", "inspector", true},
		{"financial", "broker", false},
		{"council", "agent", false},
		{"environmental", "inspector", false},
		{"strata", "solicitor", false},
	}
	for i, item := range items {
		id := uuid.NewString()
		if _, err := pool.Exec(ctx, `INSERT INTO dd_items (id, checklist_id, category, assignee_role, blocking, position)
                                      VALUES ($1, $2, $3, $4, $5, $6)`,
			id, s.checklistID, item.category, item.role, item.blocking, i+1); err != nil {
			t.Fatalf("seed item %d: %v", i, err)
		}
		s.itemIDs = append(s.itemIDs, id)
	}

	return s
}

func dumpRecent(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	type dump struct {
		name string
		sql  string
	}
	dumps := []dump{
		{"transactions", `SELECT id, pipeline_kind, current_stage, updated_at FROM transactions ORDER BY updated_at DESC LIMIT 50`},
		{"stage_transitions", `SELECT id, transaction_id, seq, from_stage, to_stage, created_at FROM stage_transitions ORDER BY created_at DESC LIMIT 50`},
		{"offer_rounds", `SELECT id, offer_id, seq, amount_cents, response, counter_amount_cents FROM offer_rounds ORDER BY created_at DESC LIMIT 50`},
		{"property_matches", `SELECT id, overall_score, price_score, location_score, size_score, feature_score, investor_score, status FROM property_matches ORDER BY updated_at DESC LIMIT 50`},
		{"dd_checklists", `SELECT id, completion_pct, status, updated_at FROM dd_checklists ORDER BY updated_at DESC LIMIT 50`},
	}
	for _, d := range dumps {
		rows, err := pool.Query(ctx, d.sql)
		if err != nil {
			t.Logf("dump %s error: %v", d.name, err)
			continue
		}
		cols := rows.FieldDescriptions()
		t.Logf("-- %s --", d.name)
		for rows.Next() {
			vals, _ := rows.Values()
			// compact print
			buf := make([]any, 0, len(vals))
			for i := range vals {
				buf = append(buf, fmt.Sprintf("%s=%v", string(cols[i].Name), vals[i]))
			}
			t.Logf("%s", buf)
		}
		rows.Close()
	}
}
