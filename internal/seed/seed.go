// Package seed loads a room catalog and starting allotments from YAML and
// writes them through the repository and inventory service.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
	"hotel-booking-backend/internal/service"
)

type Room struct {
	ID      int64  `yaml:"id"`
	HotelID int64  `yaml:"hotel_id"`
	Name    string `yaml:"name"`
}

// Allotment sets the nightly capacity of a room over [From, To).
type Allotment struct {
	RoomID int64  `yaml:"room_id"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Total  int    `yaml:"total"`
}

type Data struct {
	Rooms     []Room      `yaml:"rooms"`
	Inventory []Allotment `yaml:"inventory"`
}

// Load reads a seed file. Relative paths that do not exist from the working
// directory are retried from the module root.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *Data) validate() error {
	seen := make(map[int64]bool, len(d.Rooms))
	for _, r := range d.Rooms {
		if r.ID <= 0 || r.HotelID <= 0 {
			return fmt.Errorf("room %d: id and hotel_id must be positive", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("room %d listed twice", r.ID)
		}
		seen[r.ID] = true
	}
	for i, a := range d.Inventory {
		if _, err := domain.ParseDate(a.From); err != nil {
			return fmt.Errorf("inventory[%d]: invalid from date %q", i, a.From)
		}
		if _, err := domain.ParseDate(a.To); err != nil {
			return fmt.Errorf("inventory[%d]: invalid to date %q", i, a.To)
		}
	}
	return nil
}

// Apply upserts every room, then provisions every allotment in file order.
func Apply(ctx context.Context, rooms repository.RoomCatalogWriter, inventory service.InventoryService, data *Data) error {
	for _, r := range data.Rooms {
		if err := rooms.UpsertRoom(ctx, r.ID, r.HotelID, r.Name); err != nil {
			return err
		}
		logger.Debug("Seeded room", "room_id", r.ID, "hotel_id", r.HotelID)
	}

	for i, a := range data.Inventory {
		from, _ := domain.ParseDate(a.From)
		to, _ := domain.ParseDate(a.To)
		nights, err := inventory.Provision(ctx, domain.ProvisionRequest{
			RoomID: a.RoomID,
			From:   from,
			To:     to,
			Total:  a.Total,
		})
		if err != nil {
			return fmt.Errorf("inventory[%d] room %d: %w", i, a.RoomID, err)
		}
		logger.Debug("Seeded allotment", "room_id", a.RoomID, "nights", len(nights), "total", a.Total)
	}

	logger.Info("Seed data applied", "rooms", len(data.Rooms), "allotments", len(data.Inventory))
	return nil
}

func resolvePath(path string) string {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path
	}
	full := filepath.Join(findModuleRoot(), path)
	if _, err := os.Stat(full); err == nil {
		return full
	}
	return path
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
