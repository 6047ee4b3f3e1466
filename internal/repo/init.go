package repo

import (
	"github.com/KNICEX/price-watch/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Session{}, &entity.PriceSample{}, &entity.AlertRecord{}, &entity.Contact{})
}
