package demo

import (
	"log"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SeedBookmarks fills an empty bookmarks table with n fake rows so the
// timed endpoints have something to read. Tables that already hold data
// are left alone.
func SeedBookmarks(d *gorm.DB, n int) error {
	var count int64
	if err := d.Model(&Bookmark{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[seed] bookmarks already present, skipping (count=%d)", count)
		return nil
	}

	// Seed 0 means a crypto-random source; a fresh database gets fresh data.
	faker := gofakeit.New(0)

	bookmarks := make([]Bookmark, 0, n)
	for i := 0; i < n; i++ {
		bookmarks = append(bookmarks, Bookmark{
			ID:    uuid.New(),
			Title: faker.Sentence(3),
			URL:   faker.URL(),
			Tags:  pq.StringArray{faker.Word(), faker.Word()},
		})
	}

	if err := d.Create(&bookmarks).Error; err != nil {
		return err
	}
	log.Printf("[seed] inserted %d bookmarks", len(bookmarks))
	return nil
}
