package jobs

import (
	"bytes"
	"testing"
	"time"

	"autoservice-backend/database"
	"autoservice-backend/models"
	"autoservice-backend/tickets"

	"gorm.io/gorm"
)

func newCleaner(t *testing.T) Cleaner {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store, err := tickets.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return Cleaner{DB: db, Tickets: store, IdempotencyTTL: 24 * time.Hour}
}

func countKeys(t *testing.T, db *gorm.DB) int64 {
	var n int64
	if err := db.Model(&models.IdempotencyKey{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestPurgeIdempotencyKeys(t *testing.T) {
	c := newCleaner(t)
	old := models.IdempotencyKey{Key: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := models.IdempotencyKey{Key: "fresh"}
	if err := c.DB.Create(&old).Error; err != nil {
		t.Fatal(err)
	}
	if err := c.DB.Create(&fresh).Error; err != nil {
		t.Fatal(err)
	}

	n, err := c.PurgeIdempotencyKeys()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || countKeys(t, c.DB) != 1 {
		t.Fatalf("purged %d, left %d", n, countKeys(t, c.DB))
	}
}

func TestRemoveOrphanTickets(t *testing.T) {
	c := newCleaner(t)
	o, err := database.CreateOrder(c.DB, models.Order{Status: models.StatusNew})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{o.ID, "000777"} {
		if _, err := c.Tickets.Save(id, "", bytes.NewBufferString("%PDF")); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.RemoveOrphanTickets()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("removed = %d", n)
	}
	ids, _ := c.Tickets.TicketIDs()
	if len(ids) != 1 || ids[0] != o.ID {
		t.Fatalf("left = %v", ids)
	}
}

func TestStartRejectsBadTime(t *testing.T) {
	c := newCleaner(t)
	if _, err := Start(c, "25:99", time.UTC); err == nil {
		t.Fatal("expected error for invalid time")
	}
	s, err := Start(c, "03:00", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	s.Stop()
}
