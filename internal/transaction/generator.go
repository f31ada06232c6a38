package transaction

import (
	"math/rand"
	"sync"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/idgen"
)

// amountRange is the plausible amount band for a merchant category.
type amountRange struct {
	min, max float64
}

var merchantAmountRanges = map[string]amountRange{
	"grocery":       {5, 200},
	"gas":           {20, 120},
	"restaurant":    {8, 150},
	"online":        {10, 2000},
	"atm":           {20, 500},
	"pharmacy":      {5, 100},
	"entertainment": {15, 300},
	"travel":        {50, 5000},
	"unknown":       {1, 10000},
}

// userProfile shapes normal traffic; fraudProbability is the chance a
// transaction drawn for this profile is a fraud attempt instead.
type userProfile struct {
	name               string
	weight             float64
	preferredMerchants []string
	avgAmount          float64
	fraudProbability   float64
}

var userProfiles = []userProfile{
	{"normal", 70, []string{"grocery", "gas", "restaurant"}, 75, 0.001},
	{"heavy", 20, []string{"online", "restaurant", "entertainment"}, 120, 0.005},
	{"business", 8, []string{"travel", "online", "restaurant"}, 300, 0.008},
	{"suspicious", 2, []string{"unknown", "online", "atm"}, 500, 0.15},
}

// hourlyWeights drives realistic transaction hours (lunch peak, quiet night).
var hourlyWeights = [24]float64{
	0.5, 0.2, 0.1, 0.1, 0.1, 0.3,
	0.8, 1.2, 1.5, 1.8, 2.0, 2.2,
	2.5, 2.3, 2.0, 1.8, 1.9, 2.1,
	2.3, 2.0, 1.5, 1.2, 0.8, 0.6,
}

var fraudPatterns = []string{
	"high_amount_unknown_merchant",
	"multiple_small_amounts",
	"foreign_location",
	"unusual_time",
	"prepaid_card_pattern",
}

// trainingFraudRatio is the share of fraud labels in generated training sets.
// Boosted well above live traffic rates so both models see enough signal.
const trainingFraudRatio = 0.15

// Generator produces synthetic transactions mimicking live card traffic.
// Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the given value.
// Use a fixed seed for reproducible streams in tests.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewDefaultGenerator creates a time-seeded generator.
func NewDefaultGenerator() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

// Transaction generates a single transaction following a weighted user
// profile; a small profile-dependent fraction are fraud-patterned.
func (g *Generator) Transaction() Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	profile := g.pickProfile()
	if g.rng.Float64() < profile.fraudProbability {
		return g.fraudTransaction()
	}
	return g.normalTransaction(profile)
}

// LabeledSet generates n labeled transactions with roughly
// trainingFraudRatio fraud examples, for model training.
func (g *Generator) LabeledSet(n int) []Labeled {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Labeled, 0, n)
	for i := 0; i < n; i++ {
		if g.rng.Float64() < trainingFraudRatio {
			out = append(out, Labeled{Transaction: g.fraudTransaction(), Fraud: true})
		} else {
			out = append(out, Labeled{Transaction: g.normalTransaction(g.pickProfile()), Fraud: false})
		}
	}
	return out
}

// Interval returns a random duration uniform in [min, max].
func (g *Generator) Interval(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + time.Duration(g.rng.Int63n(int64(max-min)))
}

func (g *Generator) pickProfile() userProfile {
	var total float64
	for _, p := range userProfiles {
		total += p.weight
	}
	r := g.rng.Float64() * total
	for _, p := range userProfiles {
		if r < p.weight {
			return p
		}
		r -= p.weight
	}
	return userProfiles[0]
}

func (g *Generator) normalTransaction(profile userProfile) Transaction {
	merchant := profile.preferredMerchants[g.rng.Intn(len(profile.preferredMerchants))]

	ar := merchantAmountRanges[merchant]
	amount := ar.min + g.rng.Float64()*(ar.max-ar.min)
	amount *= (0.5 + g.rng.Float64()) * (profile.avgAmount / 75)
	if amount < 0.01 {
		amount = 0.01
	}

	return Transaction{
		ID:           idgen.WithPrefix("txn_"),
		Amount:       round2(amount),
		MerchantType: merchant,
		Location:     g.pickLocation(),
		TimeOfDay:    HourToPeriod(g.pickHour()),
		CardType:     g.pickCard(),
		Timestamp:    time.Now().UTC(),
	}
}

func (g *Generator) fraudTransaction() Transaction {
	tx := Transaction{
		ID:        idgen.WithPrefix("txn_"),
		Timestamp: time.Now().UTC(),
	}

	switch fraudPatterns[g.rng.Intn(len(fraudPatterns))] {
	case "high_amount_unknown_merchant":
		tx.Amount = round2(1000 + g.rng.Float64()*14000)
		tx.MerchantType = "unknown"
		tx.Location = g.pickOf("Unknown Location", "Foreign Country")
		tx.TimeOfDay = PeriodNight
		tx.CardType = g.pickOf(CardCredit, CardPrepaid)
	case "multiple_small_amounts":
		tx.Amount = round2(0.01 + g.rng.Float64()*50)
		tx.MerchantType = g.pickOf("online", "unknown")
		tx.Location = g.pickOf("Unknown Location", "Foreign Country")
		tx.TimeOfDay = g.pickOf(PeriodNight, PeriodEvening)
		tx.CardType = CardPrepaid
	case "foreign_location":
		tx.Amount = round2(100 + g.rng.Float64()*2900)
		tx.MerchantType = g.pickOf("online", "travel", "unknown")
		tx.Location = "Foreign Country"
		tx.TimeOfDay = g.pickOf(PeriodNight, PeriodMorning)
		tx.CardType = g.pickOf(CardCredit, CardPrepaid)
	case "unusual_time":
		tx.Amount = round2(200 + g.rng.Float64()*4800)
		tx.MerchantType = g.pickOf("atm", "online", "unknown")
		tx.Location = Locations[g.rng.Intn(len(Locations))]
		tx.TimeOfDay = PeriodNight
		tx.CardType = CardTypes[g.rng.Intn(len(CardTypes))]
	default: // prepaid_card_pattern
		tx.Amount = round2(50 + g.rng.Float64()*950)
		tx.MerchantType = g.pickOf("online", "atm", "unknown")
		tx.Location = Locations[g.rng.Intn(len(Locations))]
		tx.TimeOfDay = TimePeriods[g.rng.Intn(len(TimePeriods))]
		tx.CardType = CardPrepaid
	}

	return tx
}

// pickLocation favors domestic cities; unknown/foreign are rare in
// legitimate traffic.
func (g *Generator) pickLocation() string {
	weights := make([]float64, len(Locations))
	var total float64
	for i := range Locations {
		switch Locations[i] {
		case "Unknown Location":
			weights[i] = 1
		case "Foreign Country":
			weights[i] = 0.1
		default:
			weights[i] = 5
		}
		total += weights[i]
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return Locations[i]
		}
		r -= w
	}
	return Locations[0]
}

// pickHour draws an hour biased by hourlyWeights.
func (g *Generator) pickHour() int {
	var total float64
	for _, w := range hourlyWeights {
		total += w
	}
	r := g.rng.Float64() * total
	for h, w := range hourlyWeights {
		if r < w {
			return h
		}
		r -= w
	}
	return 12
}

// pickCard draws mostly debit/credit; prepaid is rare in normal traffic.
func (g *Generator) pickCard() string {
	r := g.rng.Float64() * 100
	switch {
	case r < 50:
		return CardDebit
	case r < 95:
		return CardCredit
	default:
		return CardPrepaid
	}
}

func (g *Generator) pickOf(options ...string) string {
	return options[g.rng.Intn(len(options))]
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
