package migrations

import (
	"gorm.io/gorm"

	"gatepass-server-go/internal/models"
)

// Migration001Initial creates the account, department and visit tables.
type Migration001Initial struct{}

func (m *Migration001Initial) Version() string {
	return "001"
}

func (m *Migration001Initial) Description() string {
	return "create accounts, departments and visit records"
}

func (m *Migration001Initial) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Department{},
		&models.VisitRecord{},
	)
}

func (m *Migration001Initial) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.VisitRecord{},
		&models.Department{},
		&models.Account{},
	)
}
