package rates

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// FileSource serves vehicle facts and provider rates from a YAML catalog.
// Used for local development and the one-off CLI quote command; production
// reads the ingestion-owned Postgres tables instead.
type FileSource struct {
	vehicles  map[string]model.VehicleFacts
	providers []fileProvider
}

type fileProvider struct {
	rate  ProviderRate
	types map[model.VehicleType]map[model.VehicleCategory]bool
}

type fileCatalog struct {
	Vehicles  []fileVehicle      `yaml:"vehicles"`
	Providers []fileProviderSpec `yaml:"providers"`
}

type fileVehicle struct {
	ID        string `yaml:"id"`
	Make      string `yaml:"make"`
	Model     string `yaml:"model"`
	Year      int    `yaml:"year"`
	Mileage   int    `yaml:"mileage"`
	PriceUSD  int64  `yaml:"price_usd"`
	Source    string `yaml:"source"`
	LotNumber string `yaml:"lot_number"`
	YardCity  string `yaml:"yard_city"`
}

type fileProviderSpec struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Broker fileBrokerSpec `yaml:"broker"`
	Rules  []fileRuleSpec `yaml:"rules"`
}

type fileBrokerSpec struct {
	Mode       string `yaml:"mode"` // flat | percent
	FlatUSD    int64  `yaml:"flat_usd"`
	PercentBps int64  `yaml:"percent_bps"`
}

type fileRuleSpec struct {
	City            string `yaml:"city"`
	Port            string `yaml:"port"`
	VehicleType     string `yaml:"vehicle_type"`
	VehicleCategory string `yaml:"vehicle_category"`
	ShippingUSD     int64  `yaml:"shipping_usd"`
	EstimatedDays   int    `yaml:"estimated_days"`
}

// LoadFile reads a YAML rates catalog from disk.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rates: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a FileSource from raw YAML.
func ParseCatalog(data []byte) (*FileSource, error) {
	var cat fileCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrap(err, "rates: unmarshal catalog")
	}

	src := &FileSource{vehicles: make(map[string]model.VehicleFacts, len(cat.Vehicles))}

	for _, v := range cat.Vehicles {
		if v.ID == "" {
			return nil, eris.New("rates: vehicle entry missing id")
		}
		src.vehicles[v.ID] = model.VehicleFacts{
			ID:         v.ID,
			Make:       v.Make,
			Model:      v.Model,
			Year:       v.Year,
			Mileage:    v.Mileage,
			PriceCents: money.FromDollars(v.PriceUSD),
			Source:     v.Source,
			LotNumber:  v.LotNumber,
			YardCity:   v.YardCity,
		}
	}

	for _, p := range cat.Providers {
		if p.ID == "" {
			return nil, eris.New("rates: provider entry missing id")
		}
		broker, err := parseBroker(p.Broker)
		if err != nil {
			return nil, eris.Wrapf(err, "rates: provider %s", p.ID)
		}

		rules := make(map[RouteKey]ShippingRule, len(p.Rules))
		types := make(map[model.VehicleType]map[model.VehicleCategory]bool)
		for _, r := range p.Rules {
			vt, err := model.ParseVehicleType(r.VehicleType)
			if err != nil {
				return nil, eris.Wrapf(err, "rates: provider %s rule", p.ID)
			}
			vc, err := model.ParseVehicleCategory(r.VehicleCategory)
			if err != nil {
				return nil, eris.Wrapf(err, "rates: provider %s rule", p.ID)
			}
			if r.EstimatedDays <= 0 {
				return nil, eris.Errorf("rates: provider %s rule %s/%s: estimated_days must be positive", p.ID, r.City, r.Port)
			}
			key := RouteKey{City: r.City, Port: r.Port, VehicleType: vt, VehicleCategory: vc}
			rules[key] = ShippingRule{
				ShippingCents: money.FromDollars(r.ShippingUSD),
				EstimatedDays: r.EstimatedDays,
			}
			if types[vt] == nil {
				types[vt] = make(map[model.VehicleCategory]bool)
			}
			types[vt][vc] = true
		}

		src.providers = append(src.providers, fileProvider{
			rate: ProviderRate{
				ProviderID:   p.ID,
				ProviderName: p.Name,
				Broker:       broker,
				Table:        NewRateTable(rules),
			},
			types: types,
		})
	}

	return src, nil
}

func parseBroker(spec fileBrokerSpec) (BrokerFee, error) {
	switch BrokerMode(spec.Mode) {
	case BrokerFlat:
		return BrokerFee{Mode: BrokerFlat, FlatCents: money.FromDollars(spec.FlatUSD)}, nil
	case BrokerPercent:
		return BrokerFee{Mode: BrokerPercent, PercentBps: spec.PercentBps}, nil
	default:
		return BrokerFee{}, eris.Errorf("unknown broker mode %q (valid: flat, percent)", spec.Mode)
	}
}

// VehicleFacts implements Source.
func (s *FileSource) VehicleFacts(ctx context.Context, vehicleID string) (*model.VehicleFacts, error) {
	v, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, fault.NotFound("vehicle", vehicleID)
	}
	return &v, nil
}

// Providers implements Source: providers with any rule for the route's
// vehicle type and category.
func (s *FileSource) Providers(ctx context.Context, route model.RouteParams) ([]ProviderRef, error) {
	var out []ProviderRef
	for _, p := range s.providers {
		if p.types[route.VehicleType][route.VehicleCategory] {
			out = append(out, ProviderRef{ID: p.rate.ProviderID, Name: p.rate.ProviderName})
		}
	}
	return out, nil
}

// ProviderRate implements Source.
func (s *FileSource) ProviderRate(ctx context.Context, providerID string, route model.RouteParams) (*ProviderRate, error) {
	for _, p := range s.providers {
		if p.rate.ProviderID != providerID {
			continue
		}
		if !p.types[route.VehicleType][route.VehicleCategory] {
			break
		}
		rate := p.rate
		return &rate, nil
	}
	return nil, fault.NotFound("provider rates", providerID)
}
