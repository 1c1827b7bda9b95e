package repositories

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gopher0727/GuildForge/internal/models"
)

// setupTestPostgres 连接测试用 PostgreSQL
// ! 需要运行中的 PostgreSQL 实例，通过 POSTGRES_TEST_DSN 指定
func setupTestPostgres(t *testing.T) *gorm.DB {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping test: POSTGRES_TEST_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}

	if err := db.AutoMigrate(&models.Template{}, &models.CreationLog{}, &models.StatusCheck{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Exec("TRUNCATE discord_templates, created_servers, status_checks")

	t.Cleanup(func() {
		db.Exec("TRUNCATE discord_templates, created_servers, status_checks")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGormStore(t *testing.T) {
	runStoreContract(t, NewGormStore(setupTestPostgres(t)))
}
