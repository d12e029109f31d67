package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// DB holds every repository in memory.
type DB struct {
	mu            sync.RWMutex
	subscriptions map[string]domain.Subscription
	keys          map[string]domain.APIKey
	plans         map[string]domain.Plan
	applications  map[string]domain.Application
	pages         map[string]domain.ContentPage
}

// New returns an empty DB.
func New() *DB {
	return &DB{
		subscriptions: make(map[string]domain.Subscription),
		keys:          make(map[string]domain.APIKey),
		plans:         make(map[string]domain.Plan),
		applications:  make(map[string]domain.Application),
		pages:         make(map[string]domain.ContentPage),
	}
}

// Seed is the document accepted by LoadSeed and LoadSeedYAML.
type Seed struct {
	Plans         []domain.Plan         `json:"plans"`
	Applications  []domain.Application  `json:"applications"`
	Pages         []domain.ContentPage  `json:"pages"`
	Subscriptions []domain.Subscription `json:"subscriptions"`
	APIKeys       []domain.APIKey       `json:"api_keys"`
}

// LoadSeed reads a JSON Seed document from r and stores its records.
func (db *DB) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("memory: decode seed: %w", err)
	}
	db.apply(seed)
	return nil
}

// LoadSeedYAML reads a YAML Seed document. Keys follow the JSON field names.
func (db *DB) LoadSeedYAML(r io.Reader) error {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("memory: decode yaml seed: %w", err)
	}
	// Round trip through JSON so the domain json tags and enum types apply.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: convert yaml seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("memory: decode yaml seed: %w", err)
	}
	db.apply(seed)
	return nil
}

func (db *DB) apply(seed Seed) {
	for _, p := range seed.Plans {
		db.PutPlan(p)
	}
	for _, a := range seed.Applications {
		db.PutApplication(a)
	}
	for _, p := range seed.Pages {
		db.PutContentPage(p)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, s := range seed.Subscriptions {
		db.subscriptions[s.ID] = cloneSubscription(s)
	}
	for _, k := range seed.APIKeys {
		db.keys[k.ID] = cloneKey(k)
	}
}

// PutPlan stores or replaces a plan.
func (db *DB) PutPlan(p domain.Plan) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p.ExcludedGroups = slices.Clone(p.ExcludedGroups)
	db.plans[p.ID] = p
}

// PutApplication stores or replaces an application.
func (db *DB) PutApplication(a domain.Application) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.applications[a.ID] = a
}

// PutContentPage stores or replaces a content page.
func (db *DB) PutContentPage(p domain.ContentPage) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.pages[p.ID] = p
}

func (db *DB) Subscriptions() *Subscriptions { return &Subscriptions{db: db} }
func (db *DB) APIKeys() *APIKeys { return &APIKeys{db: db} }
func (db *DB) Plans() *Plans { return &Plans{db: db} }
func (db *DB) Applications() *Applications { return &Applications{db: db} }
func (db *DB) ContentPages() *ContentPages { return &ContentPages{db: db} }

func cloneSubscription(s domain.Subscription) domain.Subscription {
	s.Metadata = maps.Clone(s.Metadata)
	s.Keys = nil
	return s
}

func cloneKey(k domain.APIKey) domain.APIKey {
	k.Subscriptions = slices.Clone(k.Subscriptions)
	return k
}
