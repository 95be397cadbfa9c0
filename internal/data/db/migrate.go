package db

import (
	"fmt"

	types "github.com/yungbote/coursetree/internal/domain"
)

// AutoMigrateAll creates or updates the course tree tables, parents first.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating course tables...")
	if err := s.db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
