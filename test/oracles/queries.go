package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_last_record_matches_stage",
			SQL: `WITH last AS (
                      SELECT DISTINCT ON (transaction_id) transaction_id, to_stage
                      FROM stage_transitions
                      ORDER BY transaction_id, seq DESC)
                  SELECT t.id, t.current_stage, l.to_stage
                  FROM transactions t
                  JOIN last l ON l.transaction_id = t.id
                  WHERE t.current_stage <> l.to_stage`,
		},
		{
			Name: "O2_stage_seq_monotonic",
			SQL: `WITH seqs AS (
                      SELECT transaction_id, seq,
                             LAG(seq) OVER (PARTITION BY transaction_id ORDER BY seq) AS prev
                      FROM stage_transitions)
                  SELECT * FROM seqs WHERE prev IS NOT NULL AND seq <> prev + 1`,
		},
		{
			Name: "O3_history_chains",
			SQL: `WITH ordered AS (
                      SELECT transaction_id, seq, from_stage, to_stage,
                             LAG(to_stage) OVER (PARTITION BY transaction_id ORDER BY seq) AS prev_to
                      FROM stage_transitions)
                  SELECT * FROM ordered WHERE prev_to IS NOT NULL AND from_stage <> prev_to`,
		},
		{
			Name: "O4_round_seq_monotonic",
			SQL: `WITH seqs AS (
                      SELECT offer_id, seq,
                             LAG(seq) OVER (PARTITION BY offer_id ORDER BY seq) AS prev
                      FROM offer_rounds)
                  SELECT * FROM seqs WHERE prev IS NOT NULL AND seq <> prev + 1`,
		},
		{
			Name: "O5_counter_only_on_countered",
			SQL: `SELECT id FROM offer_rounds
                  WHERE counter_amount_cents IS NOT NULL AND response <> 'countered'`,
		},
		{
			Name: "O6_score_bounds",
			SQL: `SELECT id FROM property_matches
                  WHERE overall_score NOT BETWEEN 0 AND 100
                     OR price_score NOT BETWEEN 0 AND 100
                     OR location_score NOT BETWEEN 0 AND 100
                     OR size_score NOT BETWEEN 0 AND 100
                     OR feature_score NOT BETWEEN 0 AND 100
                     OR (investor_score IS NOT NULL AND investor_score NOT BETWEEN 0 AND 100)`,
		},
		{
			Name: "O7_rejected_has_reason",
			SQL: `SELECT id FROM property_matches
                  WHERE status = 'rejected'
                    AND (rejection_reason IS NULL OR btrim(rejection_reason) = '')`,
		},
		{
			Name: "O8_checklist_derived_consistent",
			SQL: `WITH agg AS (
                      SELECT checklist_id,
                             COUNT(*) FILTER (WHERE status <> 'not_applicable') AS eligible,
                             COUNT(*) FILTER (WHERE status = 'completed') AS done,
                             COUNT(*) FILTER (WHERE status = 'issue_found' AND blocking) AS blocked
                      FROM dd_items
                      GROUP BY checklist_id)
                  SELECT c.id, c.completion_pct, c.status
                  FROM dd_checklists c
                  JOIN agg ON agg.checklist_id = c.id
                  WHERE c.completion_pct <> CASE WHEN agg.eligible = 0 THEN 0
                                                 ELSE agg.done * 100 / agg.eligible END
                     OR (agg.blocked > 0 AND c.status <> 'blocked')
                     OR (agg.blocked = 0 AND c.status = 'blocked')`,
		},
		{
			Name: "O9_auction_events_only_on_auctions",
			SQL: `SELECT e.offer_id FROM auction_events e
                  JOIN offers o ON o.id = e.offer_id
                  WHERE o.sale_method <> 'auction'`,
		},
		{
			Name: "O10_transition_delete_guard",
			SQL: `SELECT 'missing_no_update_stage_transitions' AS detail
                  WHERE NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname='no_update_stage_transitions')`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
