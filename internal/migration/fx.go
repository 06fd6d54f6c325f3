package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/internal/config"
	"github.com/casaantigua/anticuario/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		return seed.EnsureAdmin(conn, cfg)
	}),
)
