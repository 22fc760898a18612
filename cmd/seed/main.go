package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/config"
	"github.com/shinyyama/trace-green-backend/internal/db"
	"github.com/shinyyama/trace-green-backend/internal/logging"
	"github.com/shinyyama/trace-green-backend/internal/model"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		logger.Info("catalog already seeded; skipping (set FORCE_SEED=true to override)")
		return nil
	}

	var counts seedCounts
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		counts, err = seed(tx, defaultCatalog())
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("seeded catalog",
		zap.Int("badges", counts.badges),
		zap.Int("challenges", counts.challenges),
		zap.Int("rewards", counts.rewards),
		zap.Int("articles", counts.articles),
	)
	return nil
}

type seedCounts struct {
	badges, challenges, rewards, articles int
}

// seed upserts every catalog row by its natural key, so a forced re-run
// refreshes rows instead of duplicating them.
func seed(tx *gorm.DB, c catalog) (seedCounts, error) {
	var n seedCounts
	for _, b := range c.badges {
		b := b
		if err := tx.Where(model.Badge{Name: b.Name}).Assign(b).FirstOrCreate(&b).Error; err != nil {
			return n, fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
		n.badges++
	}
	for _, ch := range c.challenges {
		ch := ch
		if err := tx.Where(model.Challenge{Title: ch.Title}).Assign(ch).FirstOrCreate(&ch).Error; err != nil {
			return n, fmt.Errorf("seed challenge %q: %w", ch.Title, err)
		}
		n.challenges++
	}
	for _, r := range c.rewards {
		r := r
		if err := tx.Where(model.Reward{Name: r.Name}).Assign(r).FirstOrCreate(&r).Error; err != nil {
			return n, fmt.Errorf("seed reward %q: %w", r.Name, err)
		}
		n.rewards++
	}
	for _, a := range c.articles {
		a := a
		if err := tx.Where(model.Article{Title: a.Title}).Assign(a).FirstOrCreate(&a).Error; err != nil {
			return n, fmt.Errorf("seed article %q: %w", a.Title, err)
		}
		n.articles++
	}
	return n, nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Badge{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count badges: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
