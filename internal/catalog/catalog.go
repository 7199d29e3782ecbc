package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	collectionsFileName = "collections.json"
	singletonsFileName  = "singularly_available_markets.json"
)

// BlacklistChecker - источник исключений при построении каталога. Запись
// в чёрном списке может называть как символ, так и venue ID - оба проверяются
// против одной и той же таблицы (repository.BlacklistRepository.Exists).
type BlacklistChecker interface {
	Exists(name string) (bool, error)
}

// Catalog реализует C1 - каталог площадок: сопоставление символов со
// списком площадок, поддерживающих их, с фильтрацией по предикатам.
type Catalog struct {
	clients    map[string]venueclient.VenueClient
	persistDir string
	strict     bool
	logger     *utils.Logger
	blacklist  BlacklistChecker

	mu    sync.RWMutex
	cache *models.Collection
}

// SetBlacklist подключает источник исключений. BuildAll/BuildSpecific
// отбрасывают исключённые площадки в loadAll, до применения предикатов, а
// исключённые символы - в assemble, после отбора площадок предикатами.
func (c *Catalog) SetBlacklist(b BlacklistChecker) {
	c.blacklist = b
}

func (c *Catalog) isBlacklisted(name string) bool {
	if c.blacklist == nil {
		return false
	}
	excluded, err := c.blacklist.Exists(name)
	if err != nil {
		if c.logger != nil {
			c.logger.Sugar().Warnw("catalog: blacklist check failed, treating as not excluded", "name", name, "error", err)
		}
		return false
	}
	return excluded
}

func NewCatalog(clients map[string]venueclient.VenueClient, persistDir string, strict bool, logger *utils.Logger) *Catalog {
	return &Catalog{
		clients:    clients,
		persistDir: persistDir,
		strict:     strict,
		logger:     logger,
	}
}

type venueLoadResult struct {
	name  string
	venue *models.Venue
	err   error
}

// loadAll грузит метаданные рынков со всех площадок параллельно. Площадка,
// чья загрузка провалилась, молча отбрасывается, если не установлен
// strict-флаг - тогда ошибка всплывает вызывающей стороне.
func (c *Catalog) loadAll(ctx context.Context) ([]*models.Venue, error) {
	results := make(chan venueLoadResult, len(c.clients))
	var wg sync.WaitGroup

	for name, client := range c.clients {
		wg.Add(1)
		go func(name string, client venueclient.VenueClient) {
			defer wg.Done()
			venue, err := client.LoadMarkets(ctx)
			results <- venueLoadResult{name: name, venue: venue, err: err}
		}(name, client)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	venues := make([]*models.Venue, 0, len(c.clients))
	for r := range results {
		if r.err != nil {
			if c.strict {
				return nil, r.err
			}
			if c.logger != nil {
				c.logger.Sugar().Warnw("catalog: venue dropped from build", "venue", r.name, "error", r.err)
			}
			continue
		}
		if c.isBlacklisted(r.venue.ID) {
			continue
		}
		venues = append(venues, r.venue)
	}
	return venues, nil
}

// BuildAll грузит рынки всех известных площадок и строит коллекцию символов.
func (c *Catalog) BuildAll(ctx context.Context, write bool) (*models.Collection, error) {
	venues, err := c.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return c.assemble(venues, write)
}

// BuildSpecific строит коллекцию, ограниченную площадками, прошедшими все
// предикаты.
func (c *Catalog) BuildSpecific(ctx context.Context, predicates []Predicate, write bool) (*models.Collection, error) {
	venues, err := c.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Venue, 0, len(venues))
	for _, v := range venues {
		ok := true
		for _, p := range predicates {
			matched, err := p.Match(v)
			if err != nil {
				return nil, err
			}
			if !matched {
				ok = false
				break
			}
		}
		if ok {
			filtered = append(filtered, v)
		}
	}
	return c.assemble(filtered, write)
}

func (c *Catalog) assemble(venues []*models.Venue, write bool) (*models.Collection, error) {
	collection := models.NewCollection()
	for _, v := range venues {
		for symbol := range v.Symbols {
			if c.isBlacklisted(symbol) {
				continue
			}
			collection.Add(symbol, v.ID)
		}
	}
	if err := collection.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache = collection
	c.mu.Unlock()

	if write {
		if err := c.persist(collection); err != nil {
			return nil, err
		}
	}
	return collection, nil
}

// ExchangesFor возвращает список площадок, поддерживающих символ. Сначала
// проверяется закэшированная/персистентная коллекция; при её отсутствии
// выполняется build_specific с фильтром по одному символу.
func (c *Catalog) ExchangesFor(ctx context.Context, symbol string) ([]string, error) {
	c.mu.RLock()
	cached := c.cache
	c.mu.RUnlock()

	if cached == nil {
		loaded, err := c.load()
		if err == nil {
			c.mu.Lock()
			c.cache = loaded
			c.mu.Unlock()
			cached = loaded
		}
	}

	if cached != nil {
		if venues := cached.Venues(symbol); len(venues) > 0 {
			return venues, nil
		}
	}

	predicate := Predicate{Property: "symbols", Value: symbol}
	built, err := c.BuildSpecific(ctx, []Predicate{predicate}, false)
	if err != nil {
		return nil, err
	}

	venues := built.Venues(symbol)
	if len(venues) == 0 {
		return nil, &UnknownSymbolError{Symbol: symbol}
	}
	return venues, nil
}

func (c *Catalog) persist(collection *models.Collection) error {
	if c.persistDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.persistDir, 0o755); err != nil {
		return err
	}

	multiBytes, err := jsonAPI.MarshalIndent(collection.Multi, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.persistDir, collectionsFileName), multiBytes, 0o644); err != nil {
		return err
	}

	singleBytes, err := jsonAPI.MarshalIndent(collection.Singleton, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.persistDir, singletonsFileName), singleBytes, 0o644)
}

func (c *Catalog) load() (*models.Collection, error) {
	if c.persistDir == "" {
		return nil, os.ErrNotExist
	}

	multiBytes, err := os.ReadFile(filepath.Join(c.persistDir, collectionsFileName))
	if err != nil {
		return nil, err
	}
	singleBytes, err := os.ReadFile(filepath.Join(c.persistDir, singletonsFileName))
	if err != nil {
		return nil, err
	}

	collection := models.NewCollection()
	if err := jsonAPI.Unmarshal(multiBytes, &collection.Multi); err != nil {
		return nil, err
	}
	if err := jsonAPI.Unmarshal(singleBytes, &collection.Singleton); err != nil {
		return nil, err
	}
	return collection, nil
}
