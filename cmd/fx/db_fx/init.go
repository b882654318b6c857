package db_fx

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tripdaddy/internal/infra"
	"tripdaddy/internal/repositories"
	"tripdaddy/pkg/config"
)

var Module = fx.Provide(provideStores)

type Stores struct {
	fx.Out

	Trips        repositories.ITripRepository
	Transactions repositories.ITransactionRepository
}

// provideStores opens the backend named by STORE_DRIVER and returns its
// repositories.
func provideStores(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (Stores, error) {
	switch cfg.Store.Driver {
	case "mongo":
		client, err := infra.InitMongo(context.Background(), cfg.Store.MongoURI)
		if err != nil {
			return Stores{}, err
		}
		lc.Append(fx.StopHook(func(ctx context.Context) error {
			return infra.CloseMongo(ctx, client)
		}))
		log.Info("using mongo store", zap.String("database", cfg.Store.MongoDatabase))
		return mongoStores(client.Database(cfg.Store.MongoDatabase)), nil

	case "postgres", "":
		db, err := infra.InitPostgresql(cfg.Store.PostgresURL, cfg.IsProduction())
		if err != nil {
			return Stores{}, err
		}
		if err := infra.MigratePostgresql(db); err != nil {
			return Stores{}, fmt.Errorf("migrate: %w", err)
		}
		lc.Append(fx.StopHook(func() {
			infra.ClosePostgresql(db, log)
		}))
		log.Info("using postgres store")
		return postgresStores(db), nil

	default:
		return Stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func postgresStores(db *gorm.DB) Stores {
	return Stores{
		Trips:        repositories.NewTripRepository(db),
		Transactions: repositories.NewTransactionRepository(db),
	}
}

func mongoStores(db *mongo.Database) Stores {
	return Stores{
		Trips:        repositories.NewTripMongoRepository(db),
		Transactions: repositories.NewTransactionMongoRepository(db),
	}
}
