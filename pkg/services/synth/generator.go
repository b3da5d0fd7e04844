package synth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// Settings controls the size and composition of a generated batch
type Settings struct {
	// Count is the number of shipments to generate (default: 200)
	Count int `mapstructure:"count"`
	// Anomalies is the number of records corrupted with a known anomaly
	// (default: 20)
	Anomalies int `mapstructure:"anomalies"`
	// Seed fixes the random source so batches are reproducible (default: 1)
	Seed int64 `mapstructure:"seed"`
}

func DefaultSettings() Settings {
	return Settings{
		Count:     200,
		Anomalies: 20,
		Seed:      1,
	}
}

type product struct {
	description string
	hsCode      string
	category    string
	priceMin    float64
	priceMax    float64
	freightBase float64
	transitDays int
}

var catalog = []product{
	{"hot-rolled steel coils", "72081000", "steel", 550, 720, 2400, 35},
	{"carbon steel pipes", "73041990", "steel", 800, 980, 2600, 38},
	{"diesel engine parts", "84099199", "machinery", 120, 180, 1800, 21},
	{"centrifugal water pumps", "84137090", "machinery", 300, 420, 2000, 24},
	{"cotton knit t-shirts", "61091000", "textiles", 2.5, 4.8, 900, 28},
	{"men's denim trousers", "62034200", "textiles", 7, 12, 950, 30},
	{"pneumatic rubber tyres", "40111000", "automotive", 45, 70, 1500, 26},
	{"insulated copper cable", "85444900", "electrical", 15, 28, 1300, 19},
}

var buyers = []string{
	"BUY-01", "BUY-02", "BUY-03", "BUY-04",
	"BUY-05", "BUY-06", "BUY-07", "BUY-08",
}

// planter corrupts one clean record and reports the ground-truth categories
// the corruption should be detected under.
type planter func(g *Generator, s *domain.Shipment) []domain.Category

var planters = []planter{
	plantPriceMismatch,
	plantZeroFreightCIF,
	plantEXWCharges,
	plantInvalidHSCode,
	plantExcessiveInsurance,
	plantRejectedDrawback,
	plantFOBInsurance,
	plantPaymentInconsistency,
	plantPriceOutlier,
	plantTransitOutlier,
	plantPaymentBehaviorOutlier,
	plantDescriptionMismatch,
}

// Generator produces reproducible shipment batches from a fixed catalog,
// plants known anomalies and emits the matching ground truth.
type Generator struct {
	settings Settings
	rng      *rand.Rand
}

func NewGenerator(settings Settings) *Generator {
	return &Generator{
		settings: settings,
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}
}

// Generate builds a clean batch, then corrupts Anomalies records, cycling
// through every anomaly type. The returned truth is ordered by shipment id.
func (g *Generator) Generate() ([]domain.Shipment, []domain.PlantedAnomaly, error) {
	if g.settings.Count <= 0 {
		return nil, nil, fmt.Errorf("count must be positive, got %d", g.settings.Count)
	}
	if g.settings.Anomalies < 0 || g.settings.Anomalies > g.settings.Count {
		return nil, nil, fmt.Errorf("anomaly count %d out of range for %d records",
			g.settings.Anomalies, g.settings.Count)
	}

	batch := make([]domain.Shipment, g.settings.Count)
	for i := range batch {
		batch[i] = g.cleanShipment(i)
	}

	type pair struct {
		shipmentID string
		category   domain.Category
	}
	truthSet := make(map[pair]struct{})

	targets := g.rng.Perm(g.settings.Count)[:g.settings.Anomalies]
	for k, idx := range targets {
		plant := planters[k%len(planters)]
		for _, category := range plant(g, &batch[idx]) {
			truthSet[pair{batch[idx].ID, category}] = struct{}{}
		}
	}

	truth := make([]domain.PlantedAnomaly, 0, len(truthSet))
	for p := range truthSet {
		truth = append(truth, domain.PlantedAnomaly{ShipmentID: p.shipmentID, Category: p.category})
	}
	sort.Slice(truth, func(i, j int) bool {
		if truth[i].ShipmentID != truth[j].ShipmentID {
			return truth[i].ShipmentID < truth[j].ShipmentID
		}
		return truth[i].Category < truth[j].Category
	})

	return batch, truth, nil
}

// cleanShipment yields a record that passes every deterministic check:
// consistent price, incoterm-compatible charges, valid HS code, in-band
// movement and payment fields.
func (g *Generator) cleanShipment(i int) domain.Shipment {
	p := catalog[g.rng.Intn(len(catalog))]

	qty := 5 + g.rng.Intn(96)
	price := round2(p.priceMin + g.rng.Float64()*(p.priceMax-p.priceMin))

	s := domain.Shipment{
		ID:                 fmt.Sprintf("SHP-%04d", i+1),
		UnitPrice:          price,
		Quantity:           qty,
		TotalFOB:           price * float64(qty),
		HSCode:             p.hsCode,
		ProductDescription: p.description,
		TransitTimeDays:    g.transit(p),
		BuyerID:            buyers[g.rng.Intn(len(buyers))],
		ProductCategory:    p.category,
	}

	switch roll := g.rng.Float64(); {
	case roll < 0.30:
		s.Incoterm = domain.IncotermCIF
		s.FreightCost = g.freight(p)
		s.InsuranceValue = round2(0.01 * s.TotalFOB)
	case roll < 0.60:
		s.Incoterm = domain.IncotermFOB
	case roll < 0.75:
		s.Incoterm = domain.IncotermCFR
		s.FreightCost = g.freight(p)
	case roll < 0.90:
		s.Incoterm = domain.IncotermDDP
		s.FreightCost = g.freight(p)
	default:
		s.Incoterm = domain.IncotermEXW
	}

	if g.rng.Float64() < 0.90 {
		s.CustomsStatus = domain.CustomsCleared
	} else {
		s.CustomsStatus = domain.CustomsPending
	}

	if g.rng.Float64() < 0.85 {
		s.PaymentStatus = domain.PaymentReceived
		s.DaysToPayment = 20 + g.rng.Intn(41)
	} else {
		s.PaymentStatus = domain.PaymentPending
	}

	return s
}

func (g *Generator) freight(p product) float64 {
	return round2(p.freightBase * (0.9 + 0.2*g.rng.Float64()))
}

func (g *Generator) transit(p product) int {
	jitter := p.transitDays / 5
	return p.transitDays - jitter + g.rng.Intn(2*jitter+1)
}

func plantPriceMismatch(g *Generator, s *domain.Shipment) []domain.Category {
	s.TotalFOB = round2(s.TotalFOB * (1.3 + 0.5*g.rng.Float64()))
	return []domain.Category{domain.CategoryFinancial}
}

func plantZeroFreightCIF(g *Generator, s *domain.Shipment) []domain.Category {
	s.Incoterm = domain.IncotermCIF
	s.FreightCost = 0
	if s.InsuranceValue == 0 {
		s.InsuranceValue = round2(0.01 * s.TotalFOB)
	}
	return []domain.Category{domain.CategoryCompliance}
}

func plantEXWCharges(g *Generator, s *domain.Shipment) []domain.Category {
	s.Incoterm = domain.IncotermEXW
	s.FreightCost = round2(0.05*s.TotalFOB) + 50
	s.InsuranceValue = 0
	return []domain.Category{domain.CategoryCompliance}
}

func plantInvalidHSCode(_ *Generator, s *domain.Shipment) []domain.Category {
	s.HSCode = s.HSCode[:len(s.HSCode)-1]
	return []domain.Category{domain.CategoryCompliance}
}

func plantExcessiveInsurance(g *Generator, s *domain.Shipment) []domain.Category {
	s.Incoterm = domain.IncotermCIF
	if s.FreightCost == 0 {
		s.FreightCost = round2(0.04*s.TotalFOB) + 100
	}
	s.InsuranceValue = round2(0.10*s.TotalFOB) + 10
	return []domain.Category{domain.CategoryFinancial}
}

func plantRejectedDrawback(g *Generator, s *domain.Shipment) []domain.Category {
	s.CustomsStatus = domain.CustomsRejected
	s.DrawbackAmount = round2(0.05*s.TotalFOB) + 100
	return []domain.Category{domain.CategoryCompliance}
}

func plantFOBInsurance(g *Generator, s *domain.Shipment) []domain.Category {
	s.Incoterm = domain.IncotermFOB
	s.FreightCost = 0
	s.InsuranceValue = round2(0.015 * s.TotalFOB)
	return []domain.Category{domain.CategoryCompliance}
}

func plantPaymentInconsistency(g *Generator, s *domain.Shipment) []domain.Category {
	s.PaymentStatus = domain.PaymentPending
	s.DaysToPayment = 25 + g.rng.Intn(30)
	return []domain.Category{domain.CategoryFinancial}
}

// plantPriceOutlier keeps the declared value consistent so only the
// statistical layer can catch it. The multiplier clears the upper Tukey
// fence even in groups that mix wide price bands.
func plantPriceOutlier(g *Generator, s *domain.Shipment) []domain.Category {
	s.UnitPrice = round2(s.UnitPrice * (12 + 4*g.rng.Float64()))
	s.TotalFOB = s.UnitPrice * float64(s.Quantity)
	return []domain.Category{domain.CategoryFinancial}
}

func plantTransitOutlier(g *Generator, s *domain.Shipment) []domain.Category {
	s.TransitTimeDays = s.TransitTimeDays*4 + 10
	return []domain.Category{domain.CategoryLogistics}
}

func plantPaymentBehaviorOutlier(g *Generator, s *domain.Shipment) []domain.Category {
	s.PaymentStatus = domain.PaymentReceived
	s.DaysToPayment = 150 + g.rng.Intn(60)
	return []domain.Category{domain.CategoryBehavioral}
}

// plantDescriptionMismatch gives the record a description from another HS
// chapter and a declared value high enough to top the validation shortlist.
// The inflated price also makes it a price outlier in its group.
func plantDescriptionMismatch(g *Generator, s *domain.Shipment) []domain.Category {
	offset := g.rng.Intn(len(catalog))
	for i := 0; i < len(catalog); i++ {
		donor := catalog[(offset+i)%len(catalog)]
		if donor.hsCode[:2] != s.HSCode[:2] {
			s.ProductDescription = donor.description
			break
		}
	}
	s.Quantity = 1
	s.UnitPrice = round2(200000 + 5000*g.rng.Float64())
	s.TotalFOB = s.UnitPrice
	return []domain.Category{domain.CategoryClassification, domain.CategoryFinancial}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
