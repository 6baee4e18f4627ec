package main

import (
	"context"
	"log"
	"os"

	"dealflow/db"
	"dealflow/diligence"
	"dealflow/keydate"
	"dealflow/match"
	"dealflow/offer"
	"dealflow/portal"
	"dealflow/transaction"
)

func main() {
	ctx := context.Background()

	connString := os.Getenv("DATABASE_URL")
	pool, err := db.NewPool(ctx, connString)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	lifecycle := transaction.NewService(transaction.NewRepository(pool))
	matches := match.NewService(match.NewRepository(pool), match.NewScorer(match.DefaultWeights()))
	checklists := diligence.NewService(diligence.NewRepository(pool))
	dates := keydate.NewService(keydate.NewRepository(pool), keydate.DefaultPolicy())
	offers := offer.NewService(offer.NewRepository(pool))
	accounts := portal.NewService(portal.NewRepository(pool), os.Getenv("PORTAL_JWT_SECRET"))

	log.Printf("lifecycle engine ready: %+v",
		lifecycle != nil && matches != nil && checklists != nil && dates != nil && offers != nil && accounts != nil)
}
