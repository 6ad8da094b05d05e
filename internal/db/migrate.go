package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"bandroom/internal/model"
)

// binaryCollation keeps MySQL string comparisons exact. The server default
// (utf8mb4_0900_ai_ci) ignores case and accents, which would let "ABC" match
// the room key "abc".
const binaryCollation = "utf8mb4_bin"

type table interface {
	TableName() string
}

// Migrate creates the band_rooms and users tables with their unique indexes.
// When reset is set the tables are dropped first.
func Migrate(gormDB *gorm.DB, reset bool, log *slog.Logger) error {
	tables := []table{
		&model.Room{},
		&model.User{},
	}

	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for _, t := range tables {
			if err := gormDB.Migrator().DropTable(t); err != nil {
				log.Warn("failed to drop table (may not exist)", "error", err)
			}
		}
	}

	dialect := gormDB.Dialector.Name()
	var existing []string
	for _, t := range tables {
		if gormDB.Migrator().HasTable(t) {
			existing = append(existing, t.TableName())
		}
	}

	models := make([]interface{}, len(tables))
	for i, t := range tables {
		models[i] = t
	}
	if opts := tableOptions(dialect); opts != "" {
		gormDB = gormDB.Set("gorm:table_options", opts)
	}
	if err := gormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// tables created before the collation was pinned are converted in place
	for _, stmt := range collationStatements(dialect, existing) {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("set collation: %w", err)
		}
	}
	return nil
}

func tableOptions(dialect string) string {
	if dialect != "mysql" {
		return ""
	}
	return "CHARACTER SET utf8mb4 COLLATE " + binaryCollation
}

func collationStatements(dialect string, tables []string) []string {
	if dialect != "mysql" {
		return nil
	}
	stmts := make([]string, 0, len(tables))
	for _, name := range tables {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE `%s` CONVERT TO CHARACTER SET utf8mb4 COLLATE %s", name, binaryCollation))
	}
	return stmts
}
